package models

// Step is a named point in the conversation. The set is closed: every value
// a session can hold is listed in AllSteps.
type Step string

const (
	StepGreeting             Step = "greeting"
	StepCollectName          Step = "collect_name"
	StepConfirmName          Step = "confirm_name"
	StepConfirmCallingNumber Step = "confirm_calling_number"
	StepCollectPhone         Step = "collect_phone"
	StepCollectEmail         Step = "collect_email"
	StepCollectMoveType      Step = "collect_move_type"
	StepCollectPropertyType  Step = "collect_property_type"
	StepCollectPickupType    Step = "collect_pickup_type"
	StepCollectPickupAddress Step = "collect_pickup_address"
	StepConfirmPickupAddress Step = "confirm_pickup_address"
	StepCollectPickupRooms   Step = "collect_pickup_rooms"
	StepCollectDropoffAddr   Step = "collect_dropoff_address"
	StepConfirmDropoffAddr   Step = "confirm_dropoff_address"
	StepCollectDropoffRooms  Step = "collect_dropoff_rooms"
	StepCollectStairs        Step = "collect_stairs"
	StepCollectDateTime      Step = "collect_date_time"
	StepCollectTime          Step = "collect_time"
	StepConfirmDateTime      Step = "confirm_date_time"
	StepCheckAvailability    Step = "check_availability"
	StepCollectPacking       Step = "collect_packing"
	StepCollectSpecialItems  Step = "collect_special_items"
	StepPresentEstimate      Step = "present_estimate"
	StepAskProcessExplain    Step = "ask_process_explanation"
	StepOfferManagerDiscount Step = "offer_manager_discount"

	// Terminal steps.
	StepBookingConfirmed     Step = "booking_confirmed"
	StepTransferredToManager Step = "transferred_to_manager"
	StepCallEnded            Step = "call_ended"
)

var allSteps = []Step{
	StepGreeting,
	StepCollectName,
	StepConfirmName,
	StepConfirmCallingNumber,
	StepCollectPhone,
	StepCollectEmail,
	StepCollectMoveType,
	StepCollectPropertyType,
	StepCollectPickupType,
	StepCollectPickupAddress,
	StepConfirmPickupAddress,
	StepCollectPickupRooms,
	StepCollectDropoffAddr,
	StepConfirmDropoffAddr,
	StepCollectDropoffRooms,
	StepCollectStairs,
	StepCollectDateTime,
	StepCollectTime,
	StepConfirmDateTime,
	StepCheckAvailability,
	StepCollectPacking,
	StepCollectSpecialItems,
	StepPresentEstimate,
	StepAskProcessExplain,
	StepOfferManagerDiscount,
	StepBookingConfirmed,
	StepTransferredToManager,
	StepCallEnded,
}

// AllSteps returns every defined step in dialogue order.
func AllSteps() []Step {
	out := make([]Step, len(allSteps))
	copy(out, allSteps)
	return out
}

// Valid reports whether s is a member of the step set.
func (s Step) Valid() bool {
	for _, known := range allSteps {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the dialogue is over once s is reached.
func (s Step) Terminal() bool {
	switch s {
	case StepBookingConfirmed, StepTransferredToManager, StepCallEnded:
		return true
	}
	return false
}

// Field names a value collected by the dialogue. Retry counters are kept per field.
type Field string

const (
	FieldName          Field = "name"
	FieldPhone         Field = "phone"
	FieldEmail         Field = "email"
	FieldMoveType      Field = "move_type"
	FieldPropertyType  Field = "property_type"
	FieldPickupType    Field = "pickup_type"
	FieldPickupAddress Field = "pickup_address"
	FieldPickupRooms   Field = "pickup_rooms"
	FieldDropoffAddr   Field = "dropoff_address"
	FieldDropoffRooms  Field = "dropoff_rooms"
	FieldStairs        Field = "stairs"
	FieldDateTime      Field = "date_time"
	FieldAlternative   Field = "alternative"
	FieldPacking       Field = "packing"
	FieldSpecialItems  Field = "special_items"
	FieldBooking       Field = "booking"
	FieldExplanation   Field = "explanation"
	FieldDiscount      Field = "discount"
)
