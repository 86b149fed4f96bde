package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"tutordesk/config"
)

// Embedded email templates
var inviteTemplate = template.Must(template.New("invite").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>You're invited to {{.TeamName}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .cta { display: inline-block; padding: 12px 24px; background: #3498db; color: #fff; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Join {{.TeamName}} on TutorDesk</h2>
    </div>

    <div class="content">
        <p>Hello,</p>
        <p>{{.InviterName}} has invited you to join the team <strong>{{.TeamName}}</strong> as a {{.Role}}.</p>
        <p><a class="cta" href="{{.AcceptURL}}">Accept invitation</a></p>
    </div>

    <div class="footer">
        <p>If you weren't expecting this invitation, you can safely ignore this email.</p>
        <p>© {{.Year}} TutorDesk. All rights reserved.</p>
    </div>
</body>
</html>`))

type inviteEmailData struct {
	TeamName    string
	InviterName string
	Role        string
	AcceptURL   string
	Year        int
}

// SendInvitationEmail delivers a team invitation to the given address.
// SMTP settings come from the app config; when no SMTP host is configured
// (local development) the send is skipped without error.
func SendInvitationEmail(to, teamName, inviterName, role string, invitationID uint) error {
	if config.AppConfig.SMTPHost == "" {
		return nil
	}

	data := inviteEmailData{
		TeamName:    teamName,
		InviterName: inviterName,
		Role:        role,
		AcceptURL:   fmt.Sprintf("%s/invite/%d", config.AppConfig.AppBaseURL, invitationID),
		Year:        time.Now().Year(),
	}

	var body bytes.Buffer
	if err := inviteTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render invitation email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("You're invited to join %s", teamName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send invitation email: %w", err)
	}
	return nil
}
