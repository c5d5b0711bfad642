package symbol

import (
	"errors"
	"fmt"
	"sort"
)

type symbolKind string

const (
	symbolKindNonTerminal = symbolKind("non-terminal")
	symbolKindTerminal    = symbolKind("terminal")
)

func (t symbolKind) String() string {
	return string(t)
}

type SymbolNum uint16

func (n SymbolNum) Int() int {
	return int(n)
}

type Symbol uint16

func (s Symbol) String() string {
	kind, isReserved, num := s.describe()
	var prefix string
	switch {
	case s.IsAugmentedStart():
		prefix = "s"
	case s.IsEOF():
		prefix = "e"
	case s.IsNull():
		prefix = "ε"
	case isReserved:
		prefix = "?"
	case kind == symbolKindNonTerminal:
		prefix = "n"
	case kind == symbolKindTerminal:
		prefix = "t"
	default:
		prefix = "?"
	}
	return fmt.Sprintf("%v%v", prefix, num)
}

const (
	maskKindPart    = uint16(0x8000) // 1000 0000 0000 0000
	maskNonTerminal = uint16(0x0000) // 0000 0000 0000 0000
	maskTerminal    = uint16(0x8000) // 1000 0000 0000 0000

	maskSubKindPart = uint16(0x4000) // 0100 0000 0000 0000
	maskOrdinary    = uint16(0x0000) // 0000 0000 0000 0000
	maskReserved    = uint16(0x4000) // 0100 0000 0000 0000

	maskNumberPart = uint16(0x3fff) // 0011 1111 1111 1111

	symbolNumAugmentedStart = uint16(0x0001)
	symbolNumEOF            = uint16(0x0001)
	symbolNumNull           = uint16(0x0002)

	SymbolNil            = Symbol(0)                                                        // 0000 0000 0000 0000
	symbolAugmentedStart = Symbol(maskNonTerminal | maskReserved | symbolNumAugmentedStart) // 0100 0000 0000 0001
	SymbolEOF            = Symbol(maskTerminal | maskReserved | symbolNumEOF)               // 1100 0000 0000 0001
	SymbolNull           = Symbol(maskTerminal | maskReserved | symbolNumNull)              // 1100 0000 0000 0010

	nonTerminalNumMin = SymbolNum(2)           // The number 1 is used by the augmented start symbol.
	terminalNumMin    = SymbolNum(3)           // The numbers 1 and 2 are used by EOF and NULL.
	symbolNumMax      = SymbolNum(0xffff) >> 2 // 0011 1111 1111 1111
)

// Reserved names. A grammar author cannot declare a symbol with one of these names.
const (
	NameNull           = "null"
	NameNullAlias      = "ε"
	NameEOF            = "EOF"
	NameAugmentedStart = "_S"
)

var (
	ErrReservedName             = errors.New("reserved symbol name")
	ErrDuplicateName            = errors.New("a name cannot be both a terminal and a non-terminal")
	ErrSymbolNotFound           = errors.New("symbol not found")
	ErrAugmentedStartRegistered = errors.New("the augmented start symbol is already registered")
)

// IsReservedName reports whether a name is one of the names a symbol table reserves for itself.
func IsReservedName(text string) bool {
	switch text {
	case NameNull, NameNullAlias, NameEOF, NameAugmentedStart:
		return true
	}
	return false
}

func newSymbol(kind symbolKind, num SymbolNum) (Symbol, error) {
	if num > symbolNumMax {
		return SymbolNil, fmt.Errorf("a symbol number exceeds the limit; limit: %v, passed: %v", symbolNumMax, num)
	}

	kindMask := maskNonTerminal
	if kind == symbolKindTerminal {
		kindMask = maskTerminal
	}
	return Symbol(kindMask | maskOrdinary | uint16(num)), nil
}

func (s Symbol) Num() SymbolNum {
	_, _, num := s.describe()
	return num
}

func (s Symbol) Byte() []byte {
	if s.IsNil() {
		return []byte{0, 0}
	}
	return []byte{byte(uint16(s) >> 8), byte(uint16(s) & 0x00ff)}
}

func (s Symbol) IsNil() bool {
	_, _, num := s.describe()
	return num == 0
}

func (s Symbol) IsAugmentedStart() bool {
	return s == symbolAugmentedStart
}

func (s Symbol) IsEOF() bool {
	return s == SymbolEOF
}

// IsNull reports whether the symbol is the epsilon marker.
func (s Symbol) IsNull() bool {
	return s == SymbolNull
}

func (s Symbol) IsReserved() bool {
	if s.IsNil() {
		return false
	}
	_, isReserved, _ := s.describe()
	return isReserved
}

func (s Symbol) IsNonTerminal() bool {
	if s.IsNil() {
		return false
	}
	kind, _, _ := s.describe()
	return kind == symbolKindNonTerminal
}

func (s Symbol) IsTerminal() bool {
	if s.IsNil() {
		return false
	}
	return !s.IsNonTerminal()
}

// Less orders terminals before non-terminals, and symbols of the same kind by number. EOF and NULL
// come first among the terminals, and the augmented start symbol first among the non-terminals.
func (s Symbol) Less(t Symbol) bool {
	if s.IsTerminal() != t.IsTerminal() {
		return s.IsTerminal()
	}
	return s.Num() < t.Num()
}

func (s Symbol) describe() (symbolKind, bool, SymbolNum) {
	kind := symbolKindNonTerminal
	if uint16(s)&maskKindPart > 0 {
		kind = symbolKindTerminal
	}
	isReserved := uint16(s)&maskSubKindPart > 0
	num := SymbolNum(uint16(s) & maskNumberPart)
	return kind, isReserved, num
}

// SymbolTable is the only place symbols are minted, so one name in one category always maps to the
// same Symbol value for the lifetime of the table.
type SymbolTable struct {
	text2Sym     map[string]Symbol
	sym2Text     map[Symbol]string
	nonTermTexts []string
	termTexts    []string
	nonTermNum   SymbolNum
	termNum      SymbolNum
	augmented    bool
}

type SymbolTableWriter struct {
	*SymbolTable
}

type SymbolTableReader struct {
	*SymbolTable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		text2Sym: map[string]Symbol{
			NameEOF:       SymbolEOF,
			NameNull:      SymbolNull,
			NameNullAlias: SymbolNull,
		},
		sym2Text: map[Symbol]string{
			SymbolEOF:  NameEOF,
			SymbolNull: NameNull,
		},
		termTexts: []string{
			"",       // Nil
			NameEOF,  // EOF
			NameNull, // NULL
		},
		nonTermTexts: []string{
			"", // Nil
			"", // Augmented Start Symbol
		},
		nonTermNum: nonTerminalNumMin,
		termNum:    terminalNumMin,
	}
}

func (t *SymbolTable) Writer() *SymbolTableWriter {
	return &SymbolTableWriter{
		SymbolTable: t,
	}
}

func (t *SymbolTable) Reader() *SymbolTableReader {
	return &SymbolTableReader{
		SymbolTable: t,
	}
}

// RegisterAugmentedStartSymbol adds the augmented start symbol. It is the only symbol a table accepts
// after the declared symbols, and it can be added only once.
func (w *SymbolTableWriter) RegisterAugmentedStartSymbol() (Symbol, error) {
	if w.augmented {
		return SymbolNil, ErrAugmentedStartRegistered
	}
	w.augmented = true
	w.text2Sym[NameAugmentedStart] = symbolAugmentedStart
	w.sym2Text[symbolAugmentedStart] = NameAugmentedStart
	w.nonTermTexts[symbolAugmentedStart.Num().Int()] = NameAugmentedStart
	return symbolAugmentedStart, nil
}

func (w *SymbolTableWriter) RegisterNonTerminalSymbol(text string) (Symbol, error) {
	if IsReservedName(text) {
		return SymbolNil, fmt.Errorf("%w: %v", ErrReservedName, text)
	}
	if sym, ok := w.text2Sym[text]; ok {
		if !sym.IsNonTerminal() {
			return SymbolNil, fmt.Errorf("%w: %v", ErrDuplicateName, text)
		}
		return sym, nil
	}
	sym, err := newSymbol(symbolKindNonTerminal, w.nonTermNum)
	if err != nil {
		return SymbolNil, err
	}
	w.nonTermNum++
	w.text2Sym[text] = sym
	w.sym2Text[sym] = text
	w.nonTermTexts = append(w.nonTermTexts, text)
	return sym, nil
}

func (w *SymbolTableWriter) RegisterTerminalSymbol(text string) (Symbol, error) {
	if IsReservedName(text) {
		return SymbolNil, fmt.Errorf("%w: %v", ErrReservedName, text)
	}
	if sym, ok := w.text2Sym[text]; ok {
		if !sym.IsTerminal() {
			return SymbolNil, fmt.Errorf("%w: %v", ErrDuplicateName, text)
		}
		return sym, nil
	}
	sym, err := newSymbol(symbolKindTerminal, w.termNum)
	if err != nil {
		return SymbolNil, err
	}
	w.termNum++
	w.text2Sym[text] = sym
	w.sym2Text[sym] = text
	w.termTexts = append(w.termTexts, text)
	return sym, nil
}

func (r *SymbolTableReader) ToSymbol(text string) (Symbol, bool) {
	if sym, ok := r.text2Sym[text]; ok {
		return sym, true
	}
	return SymbolNil, false
}

func (r *SymbolTableReader) ToText(sym Symbol) (string, bool) {
	text, ok := r.sym2Text[sym]
	return text, ok
}

// Terminal returns the terminal symbol having the name. Callers use it only for names they know
// were registered, so a failure means the table and its caller disagree.
func (r *SymbolTableReader) Terminal(text string) (Symbol, error) {
	sym, ok := r.text2Sym[text]
	if !ok || !sym.IsTerminal() {
		return SymbolNil, fmt.Errorf("%w: terminal %v", ErrSymbolNotFound, text)
	}
	return sym, nil
}

func (r *SymbolTableReader) NonTerminal(text string) (Symbol, error) {
	sym, ok := r.text2Sym[text]
	if !ok || !sym.IsNonTerminal() {
		return SymbolNil, fmt.Errorf("%w: non-terminal %v", ErrSymbolNotFound, text)
	}
	return sym, nil
}

func (r *SymbolTableReader) AugmentedStartSymbol() (Symbol, bool) {
	if !r.augmented {
		return SymbolNil, false
	}
	return symbolAugmentedStart, true
}

// TerminalSymbols returns the terminal symbols including EOF and NULL in ascending order.
func (r *SymbolTableReader) TerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, r.termNum.Int())
	for sym := range r.sym2Text {
		if !sym.IsTerminal() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Num() < syms[j].Num()
	})
	return syms
}

func (r *SymbolTableReader) TerminalTexts() []string {
	return r.termTexts
}

// NonTerminalSymbols returns the non-terminal symbols in ascending order. The augmented start symbol
// comes first once it is registered.
func (r *SymbolTableReader) NonTerminalSymbols() []Symbol {
	syms := make([]Symbol, 0, r.nonTermNum.Int())
	for sym := range r.sym2Text {
		if !sym.IsNonTerminal() {
			continue
		}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Num() < syms[j].Num()
	})
	return syms
}

func (r *SymbolTableReader) NonTerminalTexts() []string {
	return r.nonTermTexts
}

func (r *SymbolTableReader) TerminalCount() int {
	return r.termNum.Int()
}

func (r *SymbolTableReader) NonTerminalCount() int {
	return r.nonTermNum.Int()
}
