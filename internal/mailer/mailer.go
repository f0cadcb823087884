package mailer

import "embed"

type MailTemplateFile string

const (
	MAX_RETRY = 3

	EXPORT_COMPLETED_TEMPLATE MailTemplateFile = "templates/export_completed.tmpl"
	EXPORT_FAILED_TEMPLATE    MailTemplateFile = "templates/export_failed.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile MailTemplateFile, toEmail string, data any) (int, error)
}
