package casedata

// StepStatus is the lifecycle state of a single timeline step.
type StepStatus string

const (
	StepCompleted StepStatus = "completed"
	StepCurrent   StepStatus = "current"
	StepPending   StepStatus = "pending"
)

// PaymentPaid is the only payment_status value treated as settled.
const PaymentPaid = "Paid"

// HearingStepTitle names the timeline step that schedules the court date.
const HearingStepTitle = "Court Hearing"

// Case is a snapshot of an eviction case as returned by the case API.
type Case struct {
	ID               int    `json:"id,omitempty"`
	CaseNumber       string `json:"case_number"`
	ClientName       string `json:"client_name"`
	TenantName       string `json:"tenant_name,omitempty"`
	PropertyAddress  string `json:"property_address"`
	County           string `json:"county"`
	Court            string `json:"court"`
	CaseType         string `json:"case_type,omitempty"`
	CurrentStatus    string `json:"current_status"`
	CurrentStep      int    `json:"current_step"`
	TotalSteps       int    `json:"total_steps"`
	FiledDate        *Date  `json:"filed_date"`
	NoticeServedDate *Date  `json:"notice_served_date"`
	HearingDate      *Date  `json:"hearing_date"`
	ResponseDeadline *Date  `json:"response_deadline"`
	PaymentStatus    string `json:"payment_status"`
	CreatedAt        *Date  `json:"created_at,omitempty"`
	UpdatedAt        *Date  `json:"updated_at,omitempty"`
}

// IsPaid reports whether the case's service fees are settled.
func (c Case) IsPaid() bool {
	return c.PaymentStatus == PaymentPaid
}

// TimelineEvent is one step of the case's progress.
type TimelineEvent struct {
	ID            int        `json:"id"`
	StepNumber    int        `json:"step_number,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        StepStatus `json:"status"`
	EventDate     *Date      `json:"event_date"`
	EstimatedDate *Date      `json:"estimated_date"`
}

// Document is metadata for a case document. Content is never fetched.
type Document struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DocumentType string `json:"document_type,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
	Status       string `json:"status,omitempty"`
	UploadedDate *Date  `json:"uploaded_date"`
}

// StatusPatch is a partial case update. Nil fields are left untouched.
type StatusPatch struct {
	CurrentStatus *string `json:"current_status,omitempty"`
	CurrentStep   *int    `json:"current_step,omitempty"`
	TotalSteps    *int    `json:"total_steps,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
	HearingDate   *Date   `json:"hearing_date,omitempty"`
}

// Empty reports whether the patch would change nothing.
func (p StatusPatch) Empty() bool {
	return p.CurrentStatus == nil && p.CurrentStep == nil && p.TotalSteps == nil &&
		p.PaymentStatus == nil && p.HearingDate == nil
}

// AuthRequest is the body of POST /auth.
type AuthRequest struct {
	CaseNumber string `json:"case_number"`
	AccessCode string `json:"access_code"`
}

// AuthResponse is the body of a 2xx POST /auth. Error is set when Success is false.
type AuthResponse struct {
	Success bool   `json:"success"`
	Case    *Case  `json:"case"`
	Error   string `json:"error,omitempty"`
}

// ErrorBody is the shape of every error response from the case API.
type ErrorBody struct {
	Error string `json:"error"`
}
