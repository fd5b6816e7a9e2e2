package domain

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
)

const (
	VideoStatusPending    = "PENDING"
	VideoStatusProcessing = "PROCESSING"
	VideoStatusCompleted  = "COMPLETED"
	VideoStatusFailed     = "FAILED"
	VideoStatusCancelled  = "CANCELLED"
)

const (
	ServiceHeyGen = "HEYGEN"
	ServiceVeo3   = "VEO3"
	ServiceKie    = "KIE"
)

// PaymentStatuses lists all valid payment states (for query-filter validation).
var PaymentStatuses = []string{
	PaymentStatusPending,
	PaymentStatusCompleted,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

// VideoTerminalStatuses are states a stale poll must never overwrite.
var VideoTerminalStatuses = []string{
	VideoStatusCompleted,
	VideoStatusFailed,
	VideoStatusCancelled,
}

func IsTerminalVideoStatus(status string) bool {
	for _, s := range VideoTerminalStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsValidPaymentStatus(status string) bool {
	for _, s := range PaymentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ProviderForService maps a VideoLog service enum to the registered provider name.
func ProviderForService(service string) string {
	switch service {
	case ServiceHeyGen:
		return "heygen"
	case ServiceVeo3:
		return "veo3"
	case ServiceKie:
		return "kie"
	}
	return ""
}

// ServiceForProvider is the inverse of ProviderForService.
func ServiceForProvider(name string) string {
	switch name {
	case "heygen":
		return ServiceHeyGen
	case "veo3":
		return ServiceVeo3
	case "kie":
		return ServiceKie
	}
	return ""
}
