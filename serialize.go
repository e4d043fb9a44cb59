package tzrule

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// typeTag identifies this proxy's payload in the top 5 bits of its header
// byte, per spec.md §6. 25 ≡ RULE_BASED_TRANSITION_MODEL.
const typeTag = 25

func headerByte() byte { return typeTag << 3 }

// Encode writes the compact binary proxy spec.md §6 describes: a one-byte
// header, the initial transition, a rule count, then each rule's own
// serialization. Deserialization must go through Decode; there is no
// exported entry point that skips the header check.
func (m *RuleBasedModel) Encode(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteByte(headerByte())

	posixTime, ok := m.initial.PosixTime()
	if !ok {
		posixTime = minPosixTime
	}
	standardOffset := m.initial.StandardOffset()
	for _, field := range []any{posixTime, standardOffset, standardOffset, int32(0)} {
		if err := binary.Write(&buf, binary.BigEndian, field); err != nil {
			return err
		}
	}

	if len(m.rules) > 255 {
		return fmt.Errorf("tzrule: cannot encode %d rules, proxy rule count is a u8", len(m.rules))
	}
	buf.WriteByte(byte(len(m.rules)))
	for _, r := range m.rules {
		if err := r.encode(&buf); err != nil {
			return err
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Decode reads a model previously written by Encode. It is the only
// supported deserialization path; a stream whose header does not carry the
// expected type tag is rejected as MalformedStream. now and logger are
// forwarded to construction exactly as in New, since the proxy format
// itself carries neither.
func Decode(r io.Reader, now time.Time, logger *slog.Logger) (*RuleBasedModel, error) {
	br := bufio.NewReader(r)

	header, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformedStream, err)
	}
	if header>>3 != typeTag {
		return nil, fmt.Errorf("%w: header tag %d, want %d", ErrMalformedStream, header>>3, typeTag)
	}

	var posixTime int64
	var previousOffset, totalOffset, dstSavings int32
	for _, field := range []any{&posixTime, &previousOffset, &totalOffset, &dstSavings} {
		if err := binary.Read(br, binary.BigEndian, field); err != nil {
			return nil, fmt.Errorf("%w: reading initial transition: %v", ErrMalformedStream, err)
		}
	}
	if previousOffset != totalOffset || dstSavings != 0 {
		return nil, fmt.Errorf("%w: initial transition not at standard offset", ErrMalformedStream)
	}

	ruleCount, err := br.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: reading rule count: %v", ErrMalformedStream, err)
	}
	rules := make([]DaylightSavingRule, ruleCount)
	for i := range rules {
		rule, err := decodeRule(br)
		if err != nil {
			return nil, err
		}
		rules[i] = rule
	}

	if posixTime == minPosixTime {
		return New(totalOffset, rules, now, logger)
	}
	return NewWithInitialTransition(StartingAt(posixTime, totalOffset), rules, now, logger)
}

// encode writes one rule's proxy payload: enough to reconstruct its
// DaySelector, time-of-day, savings and indicator exactly. Per spec.md §6
// this is "owned by the rule variants themselves"; since this repository
// defines the only variant set, that ownership lives here rather than in a
// separate per-variant package.
func (r DaylightSavingRule) encode(w io.Writer) error {
	fields := []any{
		byte(r.date.form),
		byte(r.date.month),
		int32(r.date.day),
		byte(r.date.weekday),
		int64(r.timeOfDay / time.Second),
		r.savings,
		byte(r.indicator),
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.BigEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func decodeRule(r io.Reader) (DaylightSavingRule, error) {
	var form, month, weekday, indicator byte
	var day int32
	var timeOfDaySeconds int64
	var savings int32

	fields := []any{&form, &month, &day, &weekday, &timeOfDaySeconds, &savings, &indicator}
	for _, f := range fields {
		if err := binary.Read(r, binary.BigEndian, f); err != nil {
			return DaylightSavingRule{}, fmt.Errorf("%w: reading rule: %v", ErrMalformedStream, err)
		}
	}

	sel := DaySelector{form: DayForm(form), month: time.Month(month), day: int(day), weekday: time.Weekday(weekday)}
	return DaylightSavingRule{
		date:      sel,
		timeOfDay: time.Duration(timeOfDaySeconds) * time.Second,
		savings:   savings,
		indicator: Indicator(indicator),
	}, nil
}
