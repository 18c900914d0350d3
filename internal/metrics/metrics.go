package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "encore_registrations_created_total",
		Help: "Registrations created, by program type.",
	}, []string{"program_type"})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "encore_registration_transitions_total",
		Help: "Registration status transitions.",
	}, []string{"to"})

	CheckIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encore_checkins_total",
		Help: "Attendance check-ins recorded.",
	})

	MagicLinksIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encore_magic_links_issued_total",
		Help: "Magic-link tokens issued.",
	})

	MagicLinksRedeemed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encore_magic_links_redeemed_total",
		Help: "Magic-link tokens successfully redeemed.",
	})

	EmailSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "encore_email_send_failures_total",
		Help: "Outbound notification emails that failed to send.",
	})
)
