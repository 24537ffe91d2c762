package task

import (
	"fmt"
	"strings"
	"time"
)

// Function names the model is allowed to call. These are the only schemas
// offered to the model, and the only names the mapper accepts.
const (
	FnCreateContact = "create_contact"
	FnSendSMS       = "send_sms"
	FnSendEmail     = "send_email"
	FnCreateRemind  = "create_reminder"
	FnMakePhoneCall = "make_phone_call"
	FnCreateNote    = "create_note"
)

// TypeForFunction maps a model function name onto the task vocabulary.
func TypeForFunction(name string) (Type, bool) {
	switch name {
	case FnSendSMS:
		return TypeFollowUpSMS, true
	case FnSendEmail:
		return TypeEmailSendReply, true
	case FnCreateRemind:
		return TypeReminder, true
	case FnMakePhoneCall:
		return TypeReminderCall, true
	case FnCreateContact:
		return TypeContactCRUD, true
	case FnCreateNote:
		return TypeCampaign, true
	}
	return "", false
}

// Draft is a task-creation request produced from one model function call.
// It carries no identity; the store assigns ids and ownership on insert.
type Draft struct {
	Type           Type
	ContactName    *string
	ContactPhone   *string
	ContactEmail   *string
	Message        string
	DeliveryMethod DeliveryMethod
	ScheduledFor   time.Time
}

// DraftFromCall converts one function call into a Draft. It is a pure
// function of (name, args, now). Model output is untrusted: unknown names
// and structurally invalid calls return an error and the caller decides
// whether to skip or abort.
func DraftFromCall(name string, args map[string]any, now time.Time) (*Draft, error) {
	typ, ok := TypeForFunction(name)
	if !ok {
		return nil, fmt.Errorf("unknown function %q", name)
	}

	contactName := argString(args, "contact_name")
	phone := argString(args, "phone")
	email := argString(args, "email")

	message := argString(args, "message")
	if message == "" {
		message = argString(args, "note")
	}
	if message == "" && typ == TypeContactCRUD {
		message = argString(args, "notes")
		if message == "" && contactName != "" {
			message = "Add contact " + contactName
		}
	}
	if message == "" {
		return nil, fmt.Errorf("%s call missing message text", name)
	}

	if ContactFacing(typ) && contactName == "" {
		return nil, fmt.Errorf("%s call missing contact_name", name)
	}

	timing := TimingImmediate
	if raw := argString(args, "timing"); raw != "" {
		parsed, ok := ParseTiming(raw)
		if !ok {
			return nil, fmt.Errorf("%s call has unknown timing %q", name, raw)
		}
		timing = parsed
	}

	return &Draft{
		Type:           typ,
		ContactName:    optString(contactName),
		ContactPhone:   optString(phone),
		ContactEmail:   optString(email),
		Message:        message,
		DeliveryMethod: DeliveryFor(typ),
		ScheduledFor:   ResolveTiming(timing, now),
	}, nil
}

// argString extracts a trimmed string argument, tolerating absent keys and
// non-string values.
func argString(args map[string]any, key string) string {
	v, ok := args[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
