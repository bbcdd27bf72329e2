package isa

import (
	"iter"
	"maps"
	"slices"
	"strings"
)

// Mnemonic describes one instruction of the supported subset.
type Mnemonic struct {
	Name     string  // Upper case mnemonic.
	Operands []*Rule // One rule per operand slot.
	Optional bool    // The operands may be omitted entirely (LPM).
	Template string  // Opcode template, empty for irregular encodings.
	Fields   string  // Template placeholder of each operand, '-' when not encoded.
	Relative bool    // Operands are program counter relative displacements.
	Absolute bool    // Label operands resolve to absolute addresses.

	encode func(operands []Token) string
}

// Arity returns the number of operands the mnemonic takes.
func (mn *Mnemonic) Arity() int {
	return len(mn.Operands)
}

// Wide is true for mnemonics that occupy two program memory words.
func (mn *Mnemonic) Wide() bool {
	return len(mn.Template) == 32
}

// Set is an immutable registry of mnemonics, directives, intrinsic call
// targets and predefined register aliases.
type Set struct {
	mnemonic   map[string]*Mnemonic
	directive  map[string]bool
	intrinsic  []string
	predefines map[string]int
}

// Lookup finds a mnemonic by its upper case name.
func (set *Set) Lookup(name string) (mn *Mnemonic, ok bool) {
	mn, ok = set.mnemonic[name]
	return
}

// Mnemonics iterates over all mnemonics in alphabetical order.
func (set *Set) Mnemonics() iter.Seq[*Mnemonic] {
	return func(yield func(*Mnemonic) bool) {
		for _, name := range slices.Sorted(maps.Keys(set.mnemonic)) {
			if !yield(set.mnemonic[name]) {
				return
			}
		}
	}
}

// Directive is true if name (upper case, with its leading dot) is a known directive.
func (set *Set) Directive(name string) bool {
	return set.directive[name]
}

// Intrinsic is true if name is a call target handled by the interpreter.
func (set *Set) Intrinsic(name string) bool {
	return slices.Contains(set.intrinsic, name)
}

// Predefines iterates over the register aliases installed before assembly.
func (set *Set) Predefines() iter.Seq2[string, int] {
	return maps.All(set.predefines)
}

// AVR is the registry for the supported AVR subset.
var AVR = newAVR()

// Intrinsic call targets.
const (
	INTRINSIC_PRINTF = "printf"
)

var (
	regKinds = []TokenKind{TOKEN_REG, TOKEN_INT}
	intKinds = []TokenKind{TOKEN_INT}

	regAny   = &Rule{Kinds: regKinds, Ranged: true, Min: 0, Max: 31}
	regHigh  = &Rule{Kinds: regKinds, Ranged: true, Min: 16, Max: 31}
	regMulsu = &Rule{Kinds: regKinds, Ranged: true, Min: 16, Max: 23}
	regPair  = &Rule{Kinds: regKinds, Enum: []int{0, 2, 4, 6, 8, 10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30}}
	regWord  = &Rule{Kinds: regKinds, Enum: []int{24, 26, 28, 30}}

	bitIndex = &Rule{Kinds: intKinds, Ranged: true, Min: 0, Max: 7}
	ioLow    = &Rule{Kinds: intKinds, Ranged: true, Min: 0, Max: 31}
	ioAny    = &Rule{Kinds: intKinds, Ranged: true, Min: 0, Max: 63}
	imm6     = &Rule{Kinds: intKinds, Ranged: true, Min: 0, Max: 63}
	imm8     = &Rule{Kinds: intKinds, Ranged: true, Min: 0, Max: 255}
	branch   = &Rule{Kinds: intKinds, Ranged: true, Min: -64, Max: 63}
	relative = &Rule{Kinds: intKinds, Ranged: true, Min: -2048, Max: 2047}
	absolute = &Rule{Kinds: intKinds, Ranged: true, Min: 0, Max: 4194303}
	dataAddr = &Rule{Kinds: intKinds, Ranged: true, Min: 256, Max: 65535}

	callTarget = &Rule{
		Kinds:  []TokenKind{TOKEN_INT, TOKEN_REF},
		Ranged: true, Min: 0, Max: 4194303,
		Names: []string{INTRINSIC_PRINTF},
	}

	indirect     = &Rule{Kinds: []TokenKind{TOKEN_WORD, TOKEN_MINUSWORD, TOKEN_WORDPLUS}}
	displacement = &Rule{Kinds: []TokenKind{TOKEN_WORDPLUSQ}, Ranged: true, Min: 0, Max: 63}
	programZ     = &Rule{Kinds: []TokenKind{TOKEN_WORD, TOKEN_WORDPLUS}, Pointers: "Z"}
	exchangeZ    = &Rule{Kinds: []TokenKind{TOKEN_WORD}, Exact: "Z"}
)

func newAVR() (set *Set) {
	set = &Set{
		mnemonic: map[string]*Mnemonic{},
		directive: map[string]bool{
			".SECTION": true, ".END": true, ".TEXT": true, ".DATA": true,
			".GLOBAL": true, ".BYTE": true, ".WORD": true, ".STRING": true,
			".ASCII": true, ".ASCIZ": true, ".SPACE": true, ".EQU": true,
			".SET": true,
		},
		intrinsic: []string{INTRINSIC_PRINTF},
		predefines: map[string]int{
			"XL": 26, "XH": 27,
			"YL": 28, "YH": 29,
			"ZL": 30, "ZH": 31,
		},
	}

	add := func(mn *Mnemonic) {
		set.mnemonic[mn.Name] = mn
	}
	op := func(name, template, fields string, rules ...*Rule) *Mnemonic {
		return &Mnemonic{Name: name, Template: template, Fields: fields, Operands: rules}
	}
	rel := func(mn *Mnemonic) *Mnemonic {
		mn.Relative = true
		return mn
	}
	abs := func(mn *Mnemonic) *Mnemonic {
		mn.Absolute = true
		return mn
	}
	irregular := func(name string, encode func([]Token) string, rules ...*Rule) *Mnemonic {
		return &Mnemonic{Name: name, Operands: rules, encode: encode}
	}

	// Register-register ALU.
	add(op("ADC", "000111rdddddrrrr", "dr", regAny, regAny))
	add(op("ADD", "000011rdddddrrrr", "dr", regAny, regAny))
	add(op("AND", "001000rdddddrrrr", "dr", regAny, regAny))
	add(op("CP", "000101rdddddrrrr", "dr", regAny, regAny))
	add(op("CPC", "000001rdddddrrrr", "dr", regAny, regAny))
	add(op("CPSE", "000100rdddddrrrr", "dr", regAny, regAny))
	add(op("EOR", "001001rdddddrrrr", "dr", regAny, regAny))
	add(op("MOV", "001011rdddddrrrr", "dr", regAny, regAny))
	add(op("MUL", "100111rdddddrrrr", "dr", regAny, regAny))
	add(op("MULS", "00000010ddddrrrr", "dr", regHigh, regHigh))
	add(op("MULSU", "000000110ddd0rrr", "dr", regMulsu, regMulsu))
	add(op("OR", "001010rdddddrrrr", "dr", regAny, regAny))
	add(op("SBC", "000010rdddddrrrr", "dr", regAny, regAny))
	add(op("SUB", "000110rdddddrrrr", "dr", regAny, regAny))

	// Register-immediate ALU.
	add(op("ANDI", "0111KKKKddddKKKK", "dK", regHigh, imm8))
	add(op("CPI", "0011KKKKddddKKKK", "dK", regHigh, imm8))
	add(op("LDI", "1110KKKKddddKKKK", "dK", regHigh, imm8))
	add(op("ORI", "0110KKKKddddKKKK", "dK", regHigh, imm8))
	add(op("SBCI", "0100KKKKddddKKKK", "dK", regHigh, imm8))
	add(op("SBR", "0110KKKKddddKKKK", "dK", regHigh, imm8))
	add(op("SUBI", "0101KKKKddddKKKK", "dK", regHigh, imm8))

	// Single register.
	add(op("ASR", "1001010ddddd0101", "d", regAny))
	add(op("COM", "1001010ddddd0000", "d", regAny))
	add(op("DEC", "1001010ddddd1010", "d", regAny))
	add(op("INC", "1001010ddddd0011", "d", regAny))
	add(op("LSR", "1001010ddddd0110", "d", regAny))
	add(op("NEG", "1001010ddddd0001", "d", regAny))
	add(op("POP", "1001000ddddd1111", "d", regAny))
	add(op("PUSH", "1001001rrrrr1111", "r", regAny))
	add(op("ROR", "1001010ddddd0111", "d", regAny))
	add(op("SER", "11101111dddd1111", "d", regHigh))
	add(op("SWAP", "1001010ddddd0010", "d", regAny))

	// Bit and flag manipulation.
	add(op("BCLR", "100101001sss1000", "s", bitIndex))
	add(op("BSET", "100101000sss1000", "s", bitIndex))
	add(op("BLD", "1111100ddddd0bbb", "db", regAny, bitIndex))
	add(op("BST", "1111101ddddd0bbb", "db", regAny, bitIndex))
	add(op("CBI", "10011000AAAAAbbb", "Ab", ioLow, bitIndex))
	add(op("SBI", "10011010AAAAAbbb", "Ab", ioLow, bitIndex))
	add(op("SBRC", "1111110rrrrr0bbb", "rb", regAny, bitIndex))
	add(op("SBRS", "1111111rrrrr0bbb", "rb", regAny, bitIndex))
	for name, template := range map[string]string{
		"CLC": "1001010010001000", "CLH": "1001010011011000",
		"CLI": "1001010011111000", "CLN": "1001010010101000",
		"CLS": "1001010011001000", "CLT": "1001010011101000",
		"CLV": "1001010010111000", "CLZ": "1001010010011000",
		"SEC": "1001010000001000", "SEH": "1001010001011000",
		"SEI": "1001010001111000", "SEN": "1001010000101000",
		"SES": "1001010001001000", "SET": "1001010001101000",
		"SEV": "1001010000111000", "SEZ": "1001010000011000",
		"NOP": "0000000000000000", "RET": "1001010100001000",
		"ICALL": "1001010100001001", "IJMP": "1001010000001001",
	} {
		add(op(name, template, ""))
	}

	// Branches.
	add(rel(op("BRBC", "111101kkkkkkksss", "sk", bitIndex, branch)))
	add(rel(op("BRBS", "111100kkkkkkksss", "sk", bitIndex, branch)))
	for name, template := range map[string]string{
		"BRCC": "111101kkkkkkk000", "BRCS": "111100kkkkkkk000",
		"BREQ": "111100kkkkkkk001", "BRGE": "111101kkkkkkk100",
		"BRHC": "111101kkkkkkk101", "BRHS": "111100kkkkkkk101",
		"BRID": "111101kkkkkkk111", "BRIE": "111100kkkkkkk111",
		"BRLO": "111100kkkkkkk000", "BRLT": "111100kkkkkkk100",
		"BRMI": "111100kkkkkkk010", "BRNE": "111101kkkkkkk001",
		"BRPL": "111101kkkkkkk010", "BRSH": "111101kkkkkkk000",
		"BRTC": "111101kkkkkkk110", "BRTS": "111100kkkkkkk110",
		"BRVC": "111101kkkkkkk011", "BRVS": "111100kkkkkkk011",
	} {
		add(rel(op(name, template, "k", branch)))
	}
	add(rel(op("RCALL", "1101kkkkkkkkkkkk", "k", relative)))
	add(rel(op("RJMP", "1100kkkkkkkkkkkk", "k", relative)))

	// Two word instructions.
	add(abs(op("CALL", "1001010kkkkk111kkkkkkkkkkkkkkkkk", "k", callTarget)))
	add(abs(op("JMP", "1001010kkkkk110kkkkkkkkkkkkkkkkk", "k", absolute)))
	add(abs(op("LDS", "1001000ddddd0000kkkkkkkkkkkkkkkk", "dk", regAny, dataAddr)))
	add(abs(op("STS", "1001001rrrrr0000kkkkkkkkkkkkkkkk", "kr", dataAddr, regAny)))

	// I/O space and exchange.
	add(op("IN", "10110AAdddddAAAA", "dA", regAny, ioAny))
	add(op("OUT", "10111AArrrrrAAAA", "Ar", ioAny, regAny))
	add(op("XCH", "1001001ddddd0100", "-d", exchangeZ, regAny))

	// Irregular layouts.
	add(irregular("ADIW", encodeWordImmediate("10010110"), regWord, imm6))
	add(irregular("SBIW", encodeWordImmediate("10010111"), regWord, imm6))
	add(irregular("CBR", encodeCbr, regHigh, imm8))
	add(irregular("CLR", encodeSelf("001001"), regAny))
	add(irregular("LSL", encodeSelf("000011"), regAny))
	add(irregular("ROL", encodeSelf("000111"), regAny))
	add(irregular("TST", encodeSelf("001000"), regAny))
	add(irregular("LD", encodeLd, regAny, indirect))
	add(irregular("ST", encodeSt, indirect, regAny))
	add(irregular("LDD", encodeLdd, regAny, displacement))
	add(irregular("STD", encodeStd, displacement, regAny))
	add(irregular("MOVW", encodeMovw, regPair, regPair))

	lpm := irregular("LPM", encodeLpm, regAny, programZ)
	lpm.Optional = true
	add(lpm)

	return
}

// IsMnemonic reports whether name, in any case, is a known mnemonic.
func (set *Set) IsMnemonic(name string) bool {
	_, ok := set.mnemonic[strings.ToUpper(name)]
	return ok
}
