package isa

import (
	"strconv"
	"strings"
)

// Binary returns value as an unsigned binary string of exactly width digits.
// Excess high order digits are dropped. Negative values are encoded with
// TwosComplement.
func Binary(value int, width int) string {
	if value < 0 {
		return TwosComplement(value, width)
	}

	digits := strconv.FormatInt(int64(value), 2)
	if len(digits) >= width {
		return digits[len(digits)-width:]
	}

	return strings.Repeat("0", width-len(digits)) + digits
}

// TwosComplement returns value as a two's complement binary string of
// exactly width digits. Non-negative values are zero padded. Negative values
// are encoded as 2^(width-1)+value with the sign digit set.
func TwosComplement(value int, width int) string {
	if value >= 0 {
		return Binary(value, width)
	}

	rest := (1 << (width - 1)) + value
	if rest < 0 {
		// Below the field's range: keep the low order digits.
		mask := (1 << width) - 1
		return Binary(value&mask, width)
	}

	return "1" + Binary(rest, width-1)
}

// FromTwosComplement decodes a two's complement binary string.
func FromTwosComplement(digits string) (value int) {
	for _, digit := range digits {
		value <<= 1
		if digit == '1' {
			value |= 1
		}
	}

	if len(digits) > 0 && digits[0] == '1' {
		value -= 1 << len(digits)
	}

	return
}

// Encode returns the opcode bitstring for a mnemonic and its validated operands.
func Encode(mn *Mnemonic, operands []Token) (opcode string, err error) {
	if mn.encode != nil {
		opcode = mn.encode(operands)
		return
	}

	if len(operands) != len(mn.Fields) {
		err = ErrOperandCount{Mnemonic: mn.Name, Want: len(mn.Fields), Got: len(operands)}
		return
	}

	code := []byte(mn.Template)
	for n, tok := range operands {
		symbol := mn.Fields[n]
		if symbol == '-' {
			continue
		}

		width := strings.Count(mn.Template, string(symbol))

		var digits string
		switch {
		case tok.Kind == TOKEN_REF:
			// Intrinsic call target.
			digits = strings.Repeat("1", width)
		case mn.Relative:
			digits = TwosComplement(tok.Value, width)
		default:
			digits = Binary(tok.Value, width)
		}

		index := 0
		for pos, c := range code {
			if c == symbol {
				code[pos] = digits[index]
				index++
			}
		}
	}

	opcode = string(code)
	return
}

// encodeWordImmediate encodes ADIW and SBIW.
func encodeWordImmediate(prefix string) func([]Token) string {
	return func(operands []Token) string {
		d := Binary(operands[0].Value/2-12, 2)
		K := Binary(operands[1].Value, 6)
		return prefix + K[:2] + d + K[2:]
	}
}

// encodeCbr encodes CBR as ANDI with the complemented immediate.
func encodeCbr(operands []Token) string {
	d := Binary(operands[0].Value, 4)
	K := Binary(0xff-operands[1].Value, 8)
	return "0111" + K[:4] + d + K[4:]
}

// encodeSelf encodes the register-with-itself aliases (CLR, LSL, ROL, TST).
func encodeSelf(prefix string) func([]Token) string {
	return func(operands []Token) string {
		d := Binary(operands[0].Value, 5)
		return prefix + d[:1] + d + d[1:]
	}
}

// indirectModes maps a pointer form to its opcode prefix bit and mode nibble.
var indirectModes = map[string]struct {
	displaced bool
	mode      string
}{
	"X":  {false, "1100"},
	"X+": {false, "1101"},
	"-X": {false, "1110"},
	"Y":  {true, "1000"},
	"Y+": {false, "1001"},
	"-Y": {false, "1010"},
	"Z":  {true, "0000"},
	"Z+": {false, "0001"},
	"-Z": {false, "0010"},
}

func encodeIndirect(store bool, pointer Token, reg Token) string {
	form := indirectModes[pointer.Text]
	inc := "1"
	if form.displaced {
		inc = "0"
	}
	dir := "0"
	if store {
		dir = "1"
	}
	return "100" + inc + "00" + dir + Binary(reg.Value, 5) + form.mode
}

func encodeLd(operands []Token) string {
	return encodeIndirect(false, operands[1], operands[0])
}

func encodeSt(operands []Token) string {
	return encodeIndirect(true, operands[0], operands[1])
}

func encodeDisplaced(store bool, pointer Token, reg Token) string {
	q := Binary(pointer.Value, 6)
	dir := "0"
	if store {
		dir = "1"
	}
	yz := "0"
	if pointer.Pointer() == 'Y' {
		yz = "1"
	}
	return "10" + q[:1] + "0" + q[1:3] + dir + Binary(reg.Value, 5) + yz + q[3:]
}

func encodeLdd(operands []Token) string {
	return encodeDisplaced(false, operands[1], operands[0])
}

func encodeStd(operands []Token) string {
	return encodeDisplaced(true, operands[0], operands[1])
}

func encodeLpm(operands []Token) string {
	if len(operands) == 0 {
		return "1001010111001000"
	}

	mode := "0100"
	if operands[1].Kind == TOKEN_WORDPLUS {
		mode = "0101"
	}
	return "1001000" + Binary(operands[0].Value, 5) + mode
}

func encodeMovw(operands []Token) string {
	return "00000001" + Binary(operands[0].Value/2, 4) + Binary(operands[1].Value/2, 4)
}
