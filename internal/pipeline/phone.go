package pipeline

import (
	"context"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// phoneRegion is the fixed region sign-up phone numbers must belong to:
// India, country code +91, ten national digits with a 6-9 mobile prefix.
const phoneRegion = "IN"

const (
	msgPhoneRequired = "Phone number is required"
	msgPhoneInvalid  = "Invalid phone number"
	msgPhoneExists   = "Phone number already exists"
	msgSyncFailed    = "User syncing failed with user service"
)

// PhoneFormatStage confirms a regionally valid phone number is present in
// the sign-up body. The check is purely syntactic; no liveness lookup
// happens here. The stage is idempotent and side-effect free.
type PhoneFormatStage struct{}

// NewPhoneFormatStage returns the phone format validator.
func NewPhoneFormatStage() *PhoneFormatStage {
	return &PhoneFormatStage{}
}

// Name returns the stage identifier.
func (s *PhoneFormatStage) Name() string { return "phone-format" }

// Run rejects with KindBadRequest when the phone is missing or does not
// parse as a valid number for the fixed region.
func (s *PhoneFormatStage) Run(_ context.Context, req *Request) Outcome {
	phone := strings.TrimSpace(req.Body.Phone)
	if phone == "" {
		return Reject(KindBadRequest, msgPhoneRequired)
	}

	num, err := phonenumbers.Parse(phone, phoneRegion)
	if err != nil {
		return Reject(KindBadRequest, msgPhoneInvalid)
	}
	if !phonenumbers.IsValidNumberForRegion(num, phoneRegion) {
		return Reject(KindBadRequest, msgPhoneInvalid)
	}

	return Continue()
}

var _ Stage = (*PhoneFormatStage)(nil)
