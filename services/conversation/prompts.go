package conversation

import (
	"fmt"
	"strings"
	"time"

	"moveline/models"
	"moveline/services/calendar"
	"moveline/services/persistence"
	"moveline/services/pricing"
	"moveline/services/validation"
)

const (
	moveTypeQuestion = "What type of move? Local, long distance, junk removal, or in-home service?"
	packingQuestion  = "Do you need packing service besides moving? With packing, we provide boxes of all sizes and all needed packing materials."
	processText      = "On moving day, our movers will arrive at your pickup address. We bring blankets and plastic wrap free of charge to protect your furniture, dollies to move heavy pieces, and tools to take apart and reassemble beds, mirrors and other furniture. We can also take TVs off the wall."
)

// gatherTimeout is how long the transport waits for caller input, in seconds.
const gatherTimeout = 5

// yesNoSteps accept a single keypress: 1 for yes, 2 for no.
var yesNoSteps = map[models.Step]bool{
	models.StepConfirmName:          true,
	models.StepConfirmCallingNumber: true,
	models.StepConfirmPickupAddress: true,
	models.StepConfirmDropoffAddr:   true,
	models.StepConfirmDateTime:      true,
	models.StepCollectPacking:       true,
	models.StepPresentEstimate:      true,
	models.StepAskProcessExplain:    true,
	models.StepOfferManagerDiscount: true,
}

func (m *Machine) gather(step models.Step, say string) models.Directive {
	opts := models.GatherOptions{
		Mode:    models.InputSpeechDTMF,
		Timeout: gatherTimeout,
		Hints:   m.settings.SpeechHints,
	}
	switch {
	case yesNoSteps[step]:
		opts.NumDigits = 1
	case step == models.StepCollectPhone:
		opts.NumDigits = 10
	}
	return models.GatherDirective(opts, say)
}

func (m *Machine) greeting(s *models.Session) string {
	company := m.settings.Company.Name
	if s.Data.ReturningCustomer && s.Data.Name != "" {
		return fmt.Sprintf("Hi %s, thank you for calling %s again. If you'd like to talk to our manager, you can say that at any time. How can I help you today?", s.Data.Name, company)
	}
	return fmt.Sprintf("Hi, thank you for calling %s, your best choice for local and long distance moving, junk removal and in-home service. If you'd like to talk to our manager, you can say that at any time. How can I help you today?", company)
}

// question is the prompt that asks for the value expected at step.
func (m *Machine) question(s *models.Session, step models.Step) string {
	d := s.Data
	switch step {
	case models.StepGreeting:
		return m.greeting(s)
	case models.StepCollectName:
		return "What's your full name?"
	case models.StepConfirmName:
		return fmt.Sprintf("I heard your name as %s. Is that correct?", d.Name)
	case models.StepConfirmCallingNumber:
		return fmt.Sprintf("Can we reach you at the number you're calling from, %s?", spokenPhone(s.CallerPhone))
	case models.StepCollectPhone:
		return "Please say your ten digit phone number."
	case models.StepCollectEmail:
		return "What's your email address? You can say skip if you'd rather not share one."
	case models.StepCollectMoveType:
		return moveTypeQuestion
	case models.StepCollectPropertyType:
		return "Is this residential or commercial?"
	case models.StepCollectPickupType:
		if d.PropertyType == models.PropertyCommercial {
			return "Is the pickup an office or a warehouse?"
		}
		return "Is the pickup a house or an apartment?"
	case models.StepCollectPickupAddress:
		if !d.MoveType.NeedsDropoff() {
			return "What's the address for the job? Please include the street and ZIP code."
		}
		return "What's the pickup address? Please include the street and ZIP code."
	case models.StepConfirmPickupAddress:
		return fmt.Sprintf("The pickup address is %s. Is that correct?", spokenAddress(d.Pickup))
	case models.StepCollectPickupRooms:
		return "How many rooms at pickup? Please say a number from one to ten."
	case models.StepCollectDropoffAddr:
		return "What's the drop-off address, including the street and ZIP code?"
	case models.StepConfirmDropoffAddr:
		return fmt.Sprintf("The drop-off address is %s. Is that correct?", spokenAddress(d.Dropoff))
	case models.StepCollectDropoffRooms:
		return "How many rooms at the drop-off? Please say a number from one to ten."
	case models.StepCollectStairs:
		return "How many flights of stairs are there at pickup? Say none if there's an elevator or it's on the ground floor."
	case models.StepCollectDateTime:
		return "What date would you like to move? For example, January 25th or next Monday."
	case models.StepCollectTime:
		return "What time would you prefer? You can say morning, afternoon, evening, a specific time, or flexible."
	case models.StepConfirmDateTime:
		return fmt.Sprintf("To confirm, your move is on %s %s. Is that correct?", spokenDate(d.MoveDate), timePhrase(d.MoveTime))
	case models.StepCheckAvailability:
		return calendar.FormatAlternatives(s.Alternatives, m.settings.Company.Phone)
	case models.StepCollectPacking:
		return packingQuestion
	case models.StepCollectSpecialItems:
		return "Do you have any special items like a piano, a safe, or other large items that need extra care?"
	case models.StepPresentEstimate:
		if s.Estimate == nil {
			return "Would you like to book this move?"
		}
		return pricing.FormatMessage(*s.Estimate) + " Would you like to book this move?"
	case models.StepAskProcessExplain:
		return "Would you like to hear how moving day works before I confirm your booking?"
	case models.StepOfferManagerDiscount:
		return "Would you like me to transfer you to our manager to check for a discount?"
	}
	return "How can I help you?"
}

// terminalDirective closes the dialogue. Transfers dial the manager on voice;
// over SMS the manager calls back instead.
func (m *Machine) terminalDirective(s *models.Session, step models.Step, lead string) models.Directive {
	company := m.settings.Company
	switch step {
	case models.StepBookingConfirmed:
		when := strings.TrimSpace(spokenDate(s.Data.MoveDate) + " " + timePhrase(s.Data.MoveTime))
		return models.HangupDirective(join(lead, fmt.Sprintf("Perfect. You're all set for %s. Our crew will contact you before your move. Thank you for choosing %s!", when, company.Name)))
	case models.StepTransferredToManager:
		if s.Channel == models.ChannelSMS {
			return models.TransferDirective(m.settings.ManagerPhone, join(lead, "Our manager will call you shortly."))
		}
		return models.TransferDirective(m.settings.ManagerPhone, join(lead, "I'll transfer you to our manager now. Please hold."))
	}
	return models.HangupDirective(join(lead, fmt.Sprintf("If you change your mind, please call us at %s. Thank you for calling %s!", company.Phone, company.Name)))
}

// closing answers an event that arrives after the dialogue is over.
func (m *Machine) closing(s *models.Session) models.Directive {
	if s.Step == models.StepTransferredToManager {
		return m.terminalDirective(s, s.Step, "")
	}
	return models.HangupDirective(fmt.Sprintf("Thank you for calling %s. Goodbye!", m.settings.Company.Name))
}

// repeat re-asks the current step's question.
func (m *Machine) repeat(s *models.Session) models.Directive {
	if s.Step.Terminal() {
		return m.closing(s)
	}
	return m.gather(s.Step, m.question(s, s.Step))
}

func (m *Machine) apology() models.Directive {
	return models.TransferDirective(m.settings.ManagerPhone, "I'm sorry, we're having technical difficulties. Let me connect you with our manager.")
}

func spokenPhone(phone string) string {
	digits := validation.ExtractDigits(phone)
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return validation.DigitsToSpoken(digits)
}

// spokenAddress reads a bare ZIP code digit by digit.
func spokenAddress(a *models.Address) string {
	if a == nil {
		return ""
	}
	if a.Street == "" && a.Zip != "" && (a.Formatted == "" || a.Formatted == a.Zip) {
		return "ZIP code " + validation.DigitsToSpoken(a.Zip)
	}
	return a.String()
}

func spokenDate(moveDate string) string {
	d, err := time.Parse(persistence.DateLayout, moveDate)
	if err != nil {
		return moveDate
	}
	return validation.FormatSpokenDate(d)
}

// timePhrase turns a stored time preference into "in the morning", "at 3 PM", ...
func timePhrase(moveTime string) string {
	switch moveTime {
	case "":
		return ""
	case "Morning", "Afternoon", "Evening":
		return "in the " + strings.ToLower(moveTime)
	case "Flexible":
		return "with a flexible start time"
	}
	return "at " + moveTime
}
