package internal

// Account type categories derived from account number suffixes.
const (
	AccountTypeAccessory = "Accessory"
	AccountTypeFrame     = "Frame"
	AccountTypeSurface   = "Surface"
	AccountTypeBrandLens = "Brand Lens"
	AccountTypeEdging    = "Edging"
	AccountTypeLens      = "Lens"
	AccountTypeOther     = "Other"
	AccountTypeUnknown   = "Unknown"
)

type AccountInfo struct {
	BaseAccount *string
	Suffix      *string
	AccountType *string
}

type CustomerRecord struct {
	ID                  int
	Name                string
	AccountNo           *string
	MainEmail           *string
	MainPhone           *string
	CleanName           string
	NormalizedName      string
	BaseAccount         *string
	Suffix              *string
	AccountType         *string
	BusinessID          *string
	IsMainAccount       bool
	HasMultipleAccounts bool
	EmailDomain         string
}

type EmailRow struct {
	ID                 int
	Provider           string
	MessageID          string
	FromAddress        string
	Sender             string
	Subject            string
	Summary            string
	ReceivedAt         string
	EmailDomain        string
	ExtractedBusiness  *string
	NormalizedBusiness string
	BusinessID         *string
	Hash               string
	Status             string
	RawRef             *string
}

// MatchResult links one email to its best-scoring customer. Rows below the
// match threshold are never materialized.
type MatchResult struct {
	EmailID         int
	CustomerID      int
	EmailBusiness   string
	CustomerName    string
	CustomerClean   string
	SimilarityScore float64
	FuzzyScore      float64
	SequenceScore   float64
	DomainScore     float64
	EmailDomain     string
	CustomerEmail   string
}

type AliasMapping struct {
	BusinessID  string
	OpticalName string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
