package domain

const (
	ResourceSchedule = "schedule"

	ActionRead    = "read"
	ActionWrite   = "write"
	ActionReadAll = "read_all"
)

// EnforceRequest asks whether Subject, acting with Role inside CompanyID,
// may perform Action on Resource.
type EnforceRequest struct {
	Subject   string `json:"subject"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	Resource  string `json:"resource" binding:"required"`
	Action    string `json:"action" binding:"required"`
}

type EnforceResponse struct {
	Allowed bool `json:"allowed"`
}
