package adminaction

type ActionType string

const (
	ActionSetMachineStatus   ActionType = "SET_MACHINE_STATUS"
	ActionCreateMachine      ActionType = "CREATE_MACHINE"
	ActionSetBookingStatus   ActionType = "SET_BOOKING_STATUS"
	ActionGrantCertification ActionType = "GRANT_CERTIFICATION"
	ActionSetUserActive      ActionType = "SET_USER_ACTIVE"
)
