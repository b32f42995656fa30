package grammar

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Character sets for Word, Char, and keyword boundaries.
const (
	Alphas     = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	Nums       = "0123456789"
	HexNums    = Nums + "ABCDEFabcdef"
	Alphanums  = Alphas + Nums
	Printables = "!\"#$%&'()*+,-./" + Nums + ":;<=>?@" + "ABCDEFGHIJKLMNOPQRSTUVWXYZ" + "[\\]^_`" + "abcdefghijklmnopqrstuvwxyz" + "{|}~"
	Punc8bit   = "¡¢£¤¥¦§¨©ª«¬®¯°±²³´µ¶·¸¹º»¼½¾¿×÷"

	DefaultWhitespace   = " \n\t\r"
	DefaultKeywordChars = Alphanums + "_$"
)

// charSet is a set of runes with a bitmap for ASCII.
type charSet struct {
	ascii [2]uint64
	other string
	chars string
}

func newCharSet(chars string) charSet {
	cs := charSet{}
	sb := &strings.Builder{}
	seen := make(map[rune]bool)
	for _, r := range chars {
		if seen[r] {
			continue
		}
		seen[r] = true
		sb.WriteRune(r)
		if r < 128 {
			cs.ascii[r>>6] |= 1 << (r & 63)
		} else {
			cs.other += string(r)
		}
	}
	cs.chars = sb.String()
	return cs
}

func (cs charSet) has(r rune) bool {
	if r < 128 {
		return r >= 0 && cs.ascii[r>>6]&(1<<(r&63)) != 0
	}
	return cs.other != "" && strings.ContainsRune(cs.other, r)
}

func (cs charSet) isEmpty() bool {
	return cs.chars == ""
}

// without returns a set excluding runes of chars.
func (cs charSet) without(chars string) charSet {
	return newCharSet(strings.Map(func(r rune) rune {
		if strings.ContainsRune(chars, r) {
			return -1
		}
		return r
	}, cs.chars))
}

// runeAt decodes the rune at pos, returns utf8.RuneError and 0 at the end of text.
func runeAt(text string, pos int) (rune, int) {
	if pos >= len(text) {
		return utf8.RuneError, 0
	}
	if c := text[pos]; c < utf8.RuneSelf {
		return rune(c), 1
	}
	return utf8.DecodeRuneInString(text[pos:])
}

// runeBefore decodes the rune ending at pos, returns utf8.RuneError and 0 at the start of text.
func runeBefore(text string, pos int) (rune, int) {
	if pos <= 0 {
		return utf8.RuneError, 0
	}
	return utf8.DecodeLastRuneInString(text[:pos])
}

// nextPos returns offset of the rune following the one at pos.
func nextPos(text string, pos int) int {
	_, size := runeAt(text, pos)
	if size == 0 {
		return pos + 1
	}
	return pos + size
}

// regexClass returns a character class matching cs, ranges are collapsed.
func (cs charSet) regexClass() string {
	runes := []rune(cs.chars)
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	sb := &strings.Builder{}
	sb.WriteByte('[')
	for i := 0; i < len(runes); {
		j := i
		for j+1 < len(runes) && runes[j+1] == runes[j]+1 {
			j++
		}
		writeClassRune(sb, runes[i])
		if j > i+1 {
			sb.WriteByte('-')
		}
		if j > i {
			writeClassRune(sb, runes[j])
		}
		i = j + 1
	}
	sb.WriteByte(']')
	return sb.String()
}

func writeClassRune(sb *strings.Builder, r rune) {
	if strings.ContainsRune(`\]-[^`, r) {
		sb.WriteByte('\\')
	}
	sb.WriteRune(r)
}

// abbrev returns a short form of chars suitable for expression names.
func abbrev(chars string) string {
	if utf8.RuneCountInString(chars) <= 16 {
		return chars
	}
	runes := []rune(chars)
	return string(runes[:16]) + "..."
}
