package constants

// --- СТАТУСЫ ЗАЯВОК A/S (совпадает со значениями в БД) ---
const (
	RequestStatusReceived           = "RECEIVED"
	RequestStatusRepairing          = "REPAIRING"
	RequestStatusWaitingForPayment  = "WAITING_FOR_PAYMENT"
	RequestStatusWaitingForDelivery = "WAITING_FOR_DELIVERY"
	RequestStatusCompleted          = "COMPLETED"
)

var RequestStatuses = []string{
	RequestStatusReceived,
	RequestStatusRepairing,
	RequestStatusWaitingForPayment,
	RequestStatusWaitingForDelivery,
	RequestStatusCompleted,
}

func IsRequestStatus(code string) bool {
	for _, s := range RequestStatuses {
		if s == code {
			return true
		}
	}
	return false
}

// requestTransitions - таблица допустимых переходов статуса заявки.
// COMPLETED -> REPAIRING означает повторное открытие заявки,
// при этом completed_at сбрасывается.
var requestTransitions = map[string][]string{
	RequestStatusReceived:           {RequestStatusRepairing},
	RequestStatusRepairing:          {RequestStatusWaitingForPayment, RequestStatusWaitingForDelivery, RequestStatusCompleted},
	RequestStatusWaitingForPayment:  {RequestStatusWaitingForDelivery, RequestStatusCompleted},
	RequestStatusWaitingForDelivery: {RequestStatusCompleted},
	RequestStatusCompleted:          {RequestStatusRepairing},
}

// CanTransitRequest проверяет, допустим ли переход from -> to.
func CanTransitRequest(from, to string) bool {
	for _, s := range requestTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
