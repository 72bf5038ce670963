package tickets

import "strings"

// TicketLength is the number of digits on a printed ticket.
const TicketLength = 13

// Keypad collects ticket digits from button presses and pastes.
type Keypad struct {
	digits []byte
}

// Press appends one digit. It reports false when the key is not a digit or the code is full.
func (k *Keypad) Press(key string) bool {
	if len(key) != 1 || key[0] < '0' || key[0] > '9' || len(k.digits) >= TicketLength {
		return false
	}
	k.digits = append(k.digits, key[0])
	return true
}

func (k *Keypad) Backspace() {
	if len(k.digits) > 0 {
		k.digits = k.digits[:len(k.digits)-1]
	}
}

func (k *Keypad) Clear() { k.digits = k.digits[:0] }

// Paste replaces the code with the digits of s, ignoring separators. Over-long input is rejected.
func (k *Keypad) Paste(s string) bool {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 || b.Len() > TicketLength {
		return false
	}
	k.digits = append(k.digits[:0], b.String()...)
	return true
}

func (k *Keypad) Value() string { return string(k.digits) }

func (k *Keypad) Complete() bool { return len(k.digits) == TicketLength }

// ValidTicketNumber reports whether code is exactly 13 digits.
func ValidTicketNumber(code string) bool {
	if len(code) != TicketLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}
