package intent

import (
	"google.golang.org/genai"

	"github.com/tradehand/tradehand/internal/task"
)

// actionDeclarations returns the six action schemas offered to the model.
// These are the only functions it may call; anything else is discarded
// downstream.
func actionDeclarations() []*genai.FunctionDeclaration {
	return []*genai.FunctionDeclaration{
		{
			Name:        task.FnSendSMS,
			Description: "Send a follow-up text message to a customer or contact.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"contact_name": {Type: genai.TypeString, Description: "Name of the person to text, as the owner said it."},
					"phone":        {Type: genai.TypeString, Description: "Phone number if the owner mentioned one."},
					"message":      {Type: genai.TypeString, Description: "The text message body, ready to send."},
					"timing":       timingSchema(),
				},
				Required: []string{"contact_name", "message"},
			},
		},
		{
			Name:        task.FnSendEmail,
			Description: "Send or reply to an email for a customer or contact.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"contact_name": {Type: genai.TypeString, Description: "Name of the recipient."},
					"email":        {Type: genai.TypeString, Description: "Email address if the owner mentioned one."},
					"message":      {Type: genai.TypeString, Description: "The email body, ready to send."},
					"timing":       timingSchema(),
				},
				Required: []string{"contact_name", "message"},
			},
		},
		{
			Name:        task.FnCreateRemind,
			Description: "Create an internal reminder for the owner.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"message":      {Type: genai.TypeString, Description: "What to remind the owner about."},
					"contact_name": {Type: genai.TypeString, Description: "Related contact, if any."},
					"timing":       timingSchema(),
				},
				Required: []string{"message"},
			},
		},
		{
			Name:        task.FnMakePhoneCall,
			Description: "Schedule a phone call the owner needs to make.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"contact_name": {Type: genai.TypeString, Description: "Who to call."},
					"phone":        {Type: genai.TypeString, Description: "Phone number if the owner mentioned one."},
					"message":      {Type: genai.TypeString, Description: "What the call is about."},
					"timing":       timingSchema(),
				},
				Required: []string{"contact_name", "message"},
			},
		},
		{
			Name:        task.FnCreateContact,
			Description: "Add a new person or business to the owner's contacts.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"contact_name": {Type: genai.TypeString, Description: "Full name of the new contact."},
					"phone":        {Type: genai.TypeString, Description: "Phone number, if given."},
					"email":        {Type: genai.TypeString, Description: "Email address, if given."},
					"notes":        {Type: genai.TypeString, Description: "Anything else the owner said about them."},
				},
				Required: []string{"contact_name"},
			},
		},
		{
			Name:        task.FnCreateNote,
			Description: "Record a free-form business note that is not a message or reminder.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"note":         {Type: genai.TypeString, Description: "The note content."},
					"contact_name": {Type: genai.TypeString, Description: "Related contact, if any."},
				},
				Required: []string{"note"},
			},
		},
	}
}

func timingSchema() *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeString,
		Description: "When to send or act. Default to immediate when the owner gave no timing.",
		Enum: []string{
			string(task.TimingImmediate),
			string(task.TimingEndOfDay),
			string(task.TimingTomorrow),
			string(task.TimingNextWeek),
		},
	}
}
