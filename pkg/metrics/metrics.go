package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RemindersSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "remind_candles",
		Name:      "reminders_sent_total",
		Help:      "Birthday reminder push notifications delivered to at least one device.",
	})

	WishesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "remind_candles",
		Name:      "wishes_sent_total",
		Help:      "Birthday wishes delivered, by channel.",
	}, []string{"channel"})

	ChannelFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "remind_candles",
		Name:      "wish_channel_failures_total",
		Help:      "Failed wish delivery attempts, by channel.",
	}, []string{"channel"})

	InvalidTokensPruned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "remind_candles",
		Name:      "push_tokens_pruned_total",
		Help:      "Push tokens deleted after the messaging service rejected them.",
	})

	BirthdayChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "remind_candles",
		Name:      "birthday_checks_total",
		Help:      "Daily birthday checks, by outcome.",
	}, []string{"outcome"})
)
