package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"moveline/models"
	"moveline/services/notification"
	"moveline/services/persistence"
	"moveline/services/pricing"
	"moveline/services/validation"

	"go.uber.org/zap"
)

func dispatchTable() map[models.Step]stepHandler {
	return map[models.Step]stepHandler{
		models.StepGreeting:             handleGreeting,
		models.StepCollectName:          handleCollectName,
		models.StepConfirmName:          handleConfirmName,
		models.StepConfirmCallingNumber: handleConfirmCallingNumber,
		models.StepCollectPhone:         handleCollectPhone,
		models.StepCollectEmail:         handleCollectEmail,
		models.StepCollectMoveType:      handleCollectMoveType,
		models.StepCollectPropertyType:  handleCollectPropertyType,
		models.StepCollectPickupType:    handleCollectPickupType,
		models.StepCollectPickupAddress: handleCollectPickupAddress,
		models.StepConfirmPickupAddress: handleConfirmPickupAddress,
		models.StepCollectPickupRooms:   handleCollectPickupRooms,
		models.StepCollectDropoffAddr:   handleCollectDropoffAddress,
		models.StepConfirmDropoffAddr:   handleConfirmDropoffAddress,
		models.StepCollectDropoffRooms:  handleCollectDropoffRooms,
		models.StepCollectStairs:        handleCollectStairs,
		models.StepCollectDateTime:      handleCollectDateTime,
		models.StepCollectTime:          handleCollectTime,
		models.StepConfirmDateTime:      handleConfirmDateTime,
		models.StepCheckAvailability:    handleAlternativeChoice,
		models.StepCollectPacking:       handleCollectPacking,
		models.StepCollectSpecialItems:  handleCollectSpecialItems,
		models.StepPresentEstimate:      handlePresentEstimate,
		models.StepAskProcessExplain:    handleAskProcessExplanation,
		models.StepOfferManagerDiscount: handleOfferManagerDiscount,
	}
}

// stepFields maps each step to the retry counter its failures are charged to.
// A confirmation step shares the counter of the value it confirms.
var stepFields = map[models.Step]models.Field{
	models.StepGreeting:             models.FieldName,
	models.StepCollectName:          models.FieldName,
	models.StepConfirmName:          models.FieldName,
	models.StepConfirmCallingNumber: models.FieldPhone,
	models.StepCollectPhone:         models.FieldPhone,
	models.StepCollectEmail:         models.FieldEmail,
	models.StepCollectMoveType:      models.FieldMoveType,
	models.StepCollectPropertyType:  models.FieldPropertyType,
	models.StepCollectPickupType:    models.FieldPickupType,
	models.StepCollectPickupAddress: models.FieldPickupAddress,
	models.StepConfirmPickupAddress: models.FieldPickupAddress,
	models.StepCollectPickupRooms:   models.FieldPickupRooms,
	models.StepCollectDropoffAddr:   models.FieldDropoffAddr,
	models.StepConfirmDropoffAddr:   models.FieldDropoffAddr,
	models.StepCollectDropoffRooms:  models.FieldDropoffRooms,
	models.StepCollectStairs:        models.FieldStairs,
	models.StepCollectDateTime:      models.FieldDateTime,
	models.StepCollectTime:          models.FieldDateTime,
	models.StepConfirmDateTime:      models.FieldDateTime,
	models.StepCheckAvailability:    models.FieldAlternative,
	models.StepCollectPacking:       models.FieldPacking,
	models.StepCollectSpecialItems:  models.FieldSpecialItems,
	models.StepPresentEstimate:      models.FieldBooking,
	models.StepAskProcessExplain:    models.FieldExplanation,
	models.StepOfferManagerDiscount: models.FieldDiscount,
}

func handleGreeting(t *turn) (models.Step, models.Directive) {
	if t.s.Data.ReturningCustomer && t.s.Data.Name != "" {
		return t.ask(models.StepConfirmName, "Welcome back!")
	}
	return t.ask(models.StepCollectName, "Great! I can help you with an estimate.")
}

func handleCollectName(t *turn) (models.Step, models.Directive) {
	name, ok := validation.ExtractName(t.text)
	if !ok {
		return t.fail("Sorry, I didn't catch your name. Please say your first and last name.")
	}
	t.s.Data.Name = name
	return t.ask(models.StepConfirmName, "")
}

func handleConfirmName(t *turn) (models.Step, models.Directive) {
	switch t.answer() {
	case validation.AnswerYes:
		return t.afterName()
	case validation.AnswerNo:
		t.s.Data.Name = ""
		return t.ask(models.StepCollectName, "No problem.")
	}
	return t.fail("")
}

// afterName skips phone questions when the number is already known. Over
// SMS the sending number is the contact number.
func (t *turn) afterName() (models.Step, models.Directive) {
	d := &t.s.Data
	thanks := "Thank you."
	if first := strings.Fields(d.Name); len(first) > 0 {
		thanks = "Thank you, " + first[0] + "."
	}
	caller := validation.ExtractDigits(t.s.CallerPhone)
	switch {
	case d.Phone != "":
		return t.afterPhone(thanks)
	case t.s.Channel == models.ChannelSMS && caller != "":
		d.Phone = persistence.PhoneKey(t.s.CallerPhone)
		return t.afterPhone(thanks)
	case len(caller) >= 10:
		return t.ask(models.StepConfirmCallingNumber, thanks)
	}
	return t.ask(models.StepCollectPhone, thanks)
}

func (t *turn) afterPhone(lead string) (models.Step, models.Directive) {
	if t.s.Data.Email != "" || t.s.Data.EmailDeclined {
		return t.ask(models.StepCollectMoveType, lead)
	}
	return t.ask(models.StepCollectEmail, lead)
}

func handleConfirmCallingNumber(t *turn) (models.Step, models.Directive) {
	switch t.answer() {
	case validation.AnswerYes:
		t.s.Data.Phone = persistence.PhoneKey(t.s.CallerPhone)
		return t.afterPhone("Great!")
	case validation.AnswerNo:
		return t.ask(models.StepCollectPhone, "No problem.")
	}
	return t.fail("")
}

// handleCollectPhone accumulates digits across turns until ten are known.
func handleCollectPhone(t *turn) (models.Step, models.Directive) {
	digits := validation.ExtractDigits(t.text)
	if digits == "" {
		return t.fail("I didn't catch that. Please say your phone number, digit by digit.")
	}
	buf := t.s.DigitBuffer + digits
	if len(buf) < 10 {
		t.s.DigitBuffer = buf
		return t.stay(fmt.Sprintf("I have %d digits. Please continue.", len(buf)))
	}
	t.s.DigitBuffer = ""
	t.s.Data.Phone = validation.FormatPhone(buf)
	return t.afterPhone(fmt.Sprintf("Got it. Your number is %s.", spokenPhone(t.s.Data.Phone)))
}

func handleCollectEmail(t *turn) (models.Step, models.Directive) {
	if email, ok := validation.ExtractEmail(t.text); ok {
		t.s.Data.Email = email
		return t.ask(models.StepCollectMoveType, "Thank you.")
	}
	if validation.DeclinesEmail(t.text) {
		t.s.Data.EmailDeclined = true
		return t.ask(models.StepCollectMoveType, "No problem.")
	}
	return t.fail("I didn't catch that. Please say your email address, for example john at gmail dot com, or say skip.")
}

func handleCollectMoveType(t *turn) (models.Step, models.Directive) {
	mt, ok := validation.ParseMoveType(t.text)
	if !ok {
		mt, ok = validation.ParseMoveType(t.classify(t.in.Text, moveTypeCategories))
	}
	if !ok {
		return t.fail("I didn't catch that. Please say: local, long distance, junk removal, or in-home service.")
	}

	d := &t.s.Data
	if d.MoveType != mt {
		t.s.InvalidateEstimate()
	}
	d.MoveType = mt
	if !mt.NeedsDropoff() {
		d.Dropoff = nil
		d.DropoffRooms = 0
		t.clearRoute()
	}
	lead := "Got it."
	if mt == models.MoveLongDistance {
		lead = "Great! We provide free packing materials for long distance moves."
	}
	return t.ask(models.StepCollectPropertyType, lead)
}

func handleCollectPropertyType(t *turn) (models.Step, models.Directive) {
	pt, ok := validation.ParsePropertyType(t.text)
	if !ok {
		return t.fail("")
	}
	t.s.Data.PropertyType = pt
	return t.ask(models.StepCollectPickupType, "Perfect.")
}

func handleCollectPickupType(t *turn) (models.Step, models.Directive) {
	loc, ok := validation.ParseLocationType(t.text, t.s.Data.PropertyType)
	if !ok {
		return t.fail("")
	}
	t.s.Data.PickupType = loc
	return t.ask(models.StepCollectPickupAddress, "")
}

func handleCollectPickupAddress(t *turn) (models.Step, models.Directive) {
	return t.collectAddress(&t.s.Data.Pickup, models.StepConfirmPickupAddress)
}

func handleConfirmPickupAddress(t *turn) (models.Step, models.Directive) {
	switch t.answer() {
	case validation.AnswerYes:
		return t.ask(models.StepCollectPickupRooms, "Great!")
	case validation.AnswerNo:
		t.s.Data.Pickup = nil
		t.clearRoute()
		return t.ask(models.StepCollectPickupAddress, "Let's try again.")
	}
	return t.fail("")
}

func handleCollectPickupRooms(t *turn) (models.Step, models.Directive) {
	n, ok := validation.ExtractRoomCount(t.text)
	if !ok {
		return t.fail("I didn't catch that. How many rooms? Please say a number from one to ten.")
	}
	t.s.Data.PickupRooms = n
	t.s.InvalidateEstimate()
	if t.s.Data.MoveType.NeedsDropoff() {
		return t.ask(models.StepCollectDropoffAddr, "Thanks.")
	}
	return t.ask(models.StepCollectStairs, "Thanks.")
}

func handleCollectDropoffAddress(t *turn) (models.Step, models.Directive) {
	return t.collectAddress(&t.s.Data.Dropoff, models.StepConfirmDropoffAddr)
}

// handleConfirmDropoffAddress measures the route once both ends are
// confirmed. A route failure sends the caller back to the drop-off address.
func handleConfirmDropoffAddress(t *turn) (models.Step, models.Directive) {
	switch t.answer() {
	case validation.AnswerYes:
		if err := t.measureRoute(); err != nil {
			t.s.Data.Dropoff = nil
			return t.failTo(models.StepCollectDropoffAddr, models.FieldDropoffAddr,
				"I couldn't find a driving route to that address. "+t.m.question(t.s, models.StepCollectDropoffAddr))
		}
		return t.ask(models.StepCollectDropoffRooms, "Great!")
	case validation.AnswerNo:
		t.s.Data.Dropoff = nil
		t.clearRoute()
		return t.ask(models.StepCollectDropoffAddr, "Let's try again.")
	}
	return t.fail("")
}

func handleCollectDropoffRooms(t *turn) (models.Step, models.Directive) {
	n, ok := validation.ExtractRoomCount(t.text)
	if !ok {
		return t.fail("I didn't catch that. How many rooms at the drop-off? Please say a number from one to ten.")
	}
	t.s.Data.DropoffRooms = n
	t.s.InvalidateEstimate()
	return t.ask(models.StepCollectStairs, "Thanks.")
}

func handleCollectStairs(t *turn) (models.Step, models.Directive) {
	n, ok := validation.ParseStairs(t.text)
	if !ok {
		return t.fail("")
	}
	t.s.Data.Stairs = &n
	t.s.InvalidateEstimate()
	return t.ask(models.StepCollectDateTime, "Got it.")
}

// handleCollectDateTime takes a date and, when the caller gave one in the
// same breath, a time.
func handleCollectDateTime(t *turn) (models.Step, models.Directive) {
	day, err := validation.ParseDate(t.text, t.now)
	if errors.Is(err, validation.ErrDateInPast) {
		return t.fail("That date has already passed. " + t.m.question(t.s, models.StepCollectDateTime))
	}
	if err != nil {
		return t.fail("I didn't understand that date. Please say it again, for example January 25th or next Monday.")
	}

	d := &t.s.Data
	d.MoveDate = day.Format(persistence.DateLayout)
	t.s.Alternatives = nil
	t.s.InvalidateEstimate()
	if pref, ok := validation.ParseTimePreference(t.text); ok {
		d.MoveTime = pref.Label
		return t.ask(models.StepConfirmDateTime, "")
	}
	d.MoveTime = ""
	return t.ask(models.StepCollectTime, fmt.Sprintf("Great! The move date is %s.", spokenDate(d.MoveDate)))
}

func handleCollectTime(t *turn) (models.Step, models.Directive) {
	pref, ok := validation.ParseTimePreference(t.text)
	if !ok {
		return t.fail("")
	}
	t.s.Data.MoveTime = pref.Label
	return t.ask(models.StepConfirmDateTime, "")
}

func handleConfirmDateTime(t *turn) (models.Step, models.Directive) {
	switch t.answer() {
	case validation.AnswerYes:
		return t.checkAvailability()
	case validation.AnswerNo:
		t.s.Data.MoveDate, t.s.Data.MoveTime = "", ""
		t.s.Alternatives = nil
		return t.ask(models.StepCollectDateTime, "No problem.")
	}
	return t.fail("")
}

// checkAvailability asks the calendar about the confirmed slot. Long
// distance moves are scheduled by day and skip the hourly check.
func (t *turn) checkAvailability() (models.Step, models.Directive) {
	d := &t.s.Data
	if d.MoveType == models.MoveLongDistance {
		return t.ask(models.StepCollectPacking, fmt.Sprintf("For long distance moves we schedule by day, and a coordinator will confirm the exact arrival time. You're on the schedule for %s.", spokenDate(d.MoveDate)))
	}

	day, err := time.ParseInLocation(persistence.DateLayout, d.MoveDate, t.m.settings.Location)
	pref, ok := validation.ParseTimePreference(d.MoveTime)
	if err != nil || !ok {
		d.MoveDate, d.MoveTime = "", ""
		return t.ask(models.StepCollectDateTime, "Let's go over the date again.")
	}

	ctx, cancel := t.m.collab(t.ctx)
	avail, err := t.m.Calendar.Check(ctx, day, pref)
	cancel()
	if err != nil {
		t.m.collaboratorFailed("calendar", t.s.ID, err)
		return t.fail("I couldn't check our schedule just now. Would you like me to try that date again?")
	}

	switch {
	case avail.Available:
		t.s.Alternatives = nil
		return t.ask(models.StepCollectPacking, fmt.Sprintf("Great! We have availability on %s %s.", spokenDate(d.MoveDate), timePhrase(d.MoveTime)))
	case len(avail.Alternatives) == 0:
		d.MoveDate, d.MoveTime = "", ""
		t.s.Alternatives = nil
		return t.ask(models.StepCollectDateTime, "I'm sorry, we don't have an opening around that time in the next week. Let's try a different date.")
	}
	t.s.Alternatives = avail.Alternatives
	return t.ask(models.StepCheckAvailability, "I'm sorry, that time isn't available.")
}

// handleAlternativeChoice reads which offered slot the caller picked and
// confirms it.
func handleAlternativeChoice(t *turn) (models.Step, models.Directive) {
	i, ok := validation.ParseOrdinalChoice(t.text)
	if !ok || i >= len(t.s.Alternatives) {
		return t.fail("I didn't catch which option you chose. " + t.m.question(t.s, models.StepCheckAvailability))
	}
	slot := t.s.Alternatives[i]
	t.s.Data.MoveDate = slot.Date
	t.s.Data.MoveTime = slot.Label
	t.s.Alternatives = nil
	t.s.InvalidateEstimate()
	return t.ask(models.StepConfirmDateTime, "")
}

func handleCollectPacking(t *turn) (models.Step, models.Directive) {
	var packing bool
	switch t.answer() {
	case validation.AnswerYes:
		packing = true
	case validation.AnswerNo:
	default:
		return t.fail("")
	}
	t.s.Data.Packing = &packing
	t.s.InvalidateEstimate()
	return t.ask(models.StepCollectSpecialItems, "Understood.")
}

func handleCollectSpecialItems(t *turn) (models.Step, models.Directive) {
	if t.text == "" {
		return t.fail("")
	}
	items := t.text
	lower := strings.ToLower(items)
	if lower == "none" || lower == "nothing" || (validation.ParseYesNo(items) == validation.AnswerNo && len(strings.Fields(items)) <= 3) {
		items = ""
	}
	t.s.Data.SpecialItems = items
	return t.presentEstimate()
}

// presentEstimate prices the job unless a still-valid estimate exists.
func (t *turn) presentEstimate() (models.Step, models.Directive) {
	if t.s.Estimate == nil {
		est, err := t.estimate()
		if err != nil {
			t.m.Logger.Error("estimate failed", zap.String("sessionID", t.s.ID), zap.Error(err))
			return t.transfer("I'm sorry, I couldn't put together your estimate.")
		}
		t.s.Estimate = &est
		if est.RequiresManualQuote {
			t.addEffect(t.m.sendQuoteRequest)
		}
	}
	return t.ask(models.StepPresentEstimate, "Thank you.")
}

func (t *turn) estimate() (models.Estimate, error) {
	d := t.s.Data
	weekly := 0
	if day, err := time.ParseInLocation(persistence.DateLayout, d.MoveDate, t.m.settings.Location); err == nil {
		ctx, cancel := t.m.collab(t.ctx)
		n, err := t.m.Recorder.CountWeekBookings(ctx, persistence.WeekStart(day))
		cancel()
		if err != nil {
			t.m.collaboratorFailed("persistence", t.s.ID, err)
		} else {
			weekly = n
		}
	}
	stairs := 0
	if d.Stairs != nil {
		stairs = *d.Stairs
	}
	return t.m.settings.Pricing.Estimate(pricing.Input{
		DistanceMiles:  d.DistanceMiles,
		PickupRooms:    d.PickupRooms,
		DropoffRooms:   d.DropoffRooms,
		Stairs:         stairs,
		MoveType:       d.MoveType,
		Packing:        d.Packing != nil && *d.Packing,
		WeeklyBookings: weekly,
	})
}

func handlePresentEstimate(t *turn) (models.Step, models.Directive) {
	switch t.answer() {
	case validation.AnswerYes:
		return t.ask(models.StepAskProcessExplain, "Wonderful.")
	case validation.AnswerNo:
		return t.ask(models.StepOfferManagerDiscount, "I understand.")
	}
	return t.fail("")
}

func handleAskProcessExplanation(t *turn) (models.Step, models.Directive) {
	switch t.answer() {
	case validation.AnswerYes:
		return t.end(models.StepBookingConfirmed, processText)
	case validation.AnswerNo:
		return t.end(models.StepBookingConfirmed, "")
	}
	return t.fail("")
}

func handleOfferManagerDiscount(t *turn) (models.Step, models.Directive) {
	switch t.answer() {
	case validation.AnswerYes:
		return t.transfer("")
	case validation.AnswerNo:
		return t.end(models.StepCallEnded, "No problem.")
	}
	return t.fail("")
}

// collectAddress validates an address locally, then geocodes it. A ZIP code
// may be dictated over several turns; the digits are kept in DigitBuffer.
func (t *turn) collectAddress(target **models.Address, confirm models.Step) (models.Step, models.Directive) {
	candidate, err := validation.ParseAddressInput(t.text)
	if err != nil {
		digits := validation.ExtractDigits(t.text)
		if digits == "" || !dictated(t.text, digits) {
			t.s.DigitBuffer = ""
			return t.fail("I didn't catch that address. Please say the street address and ZIP code.")
		}
		buf := t.s.DigitBuffer + digits
		if len(buf) < 5 {
			t.s.DigitBuffer = buf
			return t.stay(fmt.Sprintf("I have %d digits. Please continue with the ZIP code.", len(buf)))
		}
		candidate = buf[:5]
	}
	t.s.DigitBuffer = ""

	addr, err := t.geocode(candidate)
	if err != nil {
		return t.fail("I couldn't find that address. Please say it again, including the street and ZIP code.")
	}
	*target = addr
	t.clearRoute()
	return t.ask(confirm, "")
}

// dictated reports input made only of digits, spoken or pressed.
func dictated(text, digits string) bool {
	return len(strings.Fields(text)) <= len(digits)
}

// geocode resolves an address. Any error, a missing maps key included,
// leaves the address unvalidated.
func (t *turn) geocode(raw string) (*models.Address, error) {
	ctx, cancel := t.m.collab(t.ctx)
	defer cancel()
	addr, err := t.m.Maps.Geocode(ctx, raw)
	if err != nil {
		t.m.collaboratorFailed("geocoding", t.s.ID, err)
		return nil, err
	}
	if addr.Raw == "" {
		addr.Raw = raw
	}
	return addr, nil
}

func (t *turn) measureRoute() error {
	d := &t.s.Data
	ctx, cancel := t.m.collab(t.ctx)
	defer cancel()
	route, err := t.m.Maps.Route(ctx, d.Pickup.String(), d.Dropoff.String())
	if err != nil {
		t.m.collaboratorFailed("distance", t.s.ID, err)
		return err
	}
	d.DistanceMiles = route.PickupToDropoffMiles
	d.RoundTripMiles = route.TotalMiles
	t.s.InvalidateEstimate()
	return nil
}

// clearRoute drops distances derived from an address that changed.
func (t *turn) clearRoute() {
	t.s.Data.DistanceMiles = 0
	t.s.Data.RoundTripMiles = 0
	t.s.InvalidateEstimate()
}

// sendQuoteRequest texts the manager the details of a long distance move and
// lets the customer know a custom quote is coming.
func (m *Machine) sendQuoteRequest(ctx context.Context, s *models.Session) {
	d := withContact(s).Data
	if m.settings.ManagerPhone != "" {
		smsCtx, cancel := m.collab(ctx)
		err := m.Notifier.SendSMS(smsCtx, m.settings.ManagerPhone, notification.QuoteRequestSMS(d, s.Data.DistanceMiles))
		cancel()
		if err != nil {
			m.collaboratorFailed("notification", s.ID, err)
		}
	}
	if d.Phone == "" {
		return
	}
	smsCtx, cancel := m.collab(ctx)
	defer cancel()
	if err := m.Notifier.SendSMS(smsCtx, d.Phone, notification.QuoteRequestCustomerSMS(d, m.settings.Company)); err != nil {
		m.collaboratorFailed("notification", s.ID, err)
	}
}
