// Package admin decides who may mutate folders and files.
package admin

import (
	"strings"

	"github.com/jmanurodriguez/cloudinary-portal/config"
)

type Policy struct {
	emails []string
	env    string
}

// NewPolicy parses a comma separated allow-list. Entries are trimmed and
// blanks dropped.
func NewPolicy(adminEmails, env string) *Policy {
	var emails []string
	for _, e := range strings.Split(adminEmails, ",") {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}
	return &Policy{emails: emails, env: env}
}

func ProvidePolicy(cfg *config.AppConfig) *Policy {
	return NewPolicy(cfg.AdminEmails, cfg.Env)
}

// IsAdmin reports whether email is on the allow-list. The comparison is
// exact: the email is neither trimmed nor case folded.
func (p *Policy) IsAdmin(email string) bool {
	if email == "" {
		return false
	}
	for _, e := range p.emails {
		if e == email {
			return true
		}
	}
	return false
}

// IsDevelopmentMode reports a non-production runtime. It only feeds UI
// affordances through /api/check-admin and must never be honored by the
// server-side admin gate.
func (p *Policy) IsDevelopmentMode() bool {
	return p.env == "dev" || p.env == "development"
}
