package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramCommandsReceivedTotal,
		telegramCooldownTriggeredTotal,
	)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands from users.",
		},
		[]string{"command"},
	)

	telegramCooldownTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_cooldown_triggered_total",
			Help: "Total number of times the per-user command cooldown fired.",
		},
	)
)

// norm keeps the command label cardinality bounded: the value is user input.
func norm(command string) string {
	switch command {
	case "verify", "start", "help":
		return command
	default:
		return "other"
	}
}

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncCooldownTriggered() {
	telegramCooldownTriggeredTotal.Inc()
}
