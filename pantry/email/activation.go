// pantry/email/activation.go
package email

import (
	"strings"
	"text/template"
)

var activationTemplate = template.Must(template.New("activation").Parse(
	`Hello {{.Username}},

Thanks for registering. Activate your account here:

{{.Link}}

If you did not register, ignore this message.
`))

// Activation describes a newly registered account awaiting activation.
type Activation struct {
	Email    string
	Username string
	UserID   string
	SiteURL  string
}

// Link is the activation URL for the account.
func (a Activation) Link() string {
	return strings.TrimRight(a.SiteURL, "/") + "/users/" + a.UserID + "/activate"
}

// ActivationMessage builds the mail sent after registration.
func ActivationMessage(a Activation) Message {
	return Message{
		To:           []string{a.Email},
		Subject:      "Activate your account",
		TextTemplate: activationTemplate,
		Data:         a,
	}
}
