// SPDX-License-Identifier: GPL-2.0-or-later

package console

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var ErrSyntax = errors.New("syntax error")

type Arg struct {
	a string
}

func (a Arg) String() string {
	return a.a
}

func (a Arg) Int() (int, error) {
	r, err := strconv.ParseInt(a.a, 10, 0)
	if err != nil {
		return 0, errors.Wrapf(ErrSyntax, "%q is not an integer", a.a)
	}
	return int(r), nil
}

func (a Arg) Float32() (float32, error) {
	r, err := strconv.ParseFloat(a.a, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrSyntax, "%q is not a number", a.a)
	}
	return float32(r), nil
}

func (a Arg) Bool() bool {
	switch a.a {
	case "1", "t", "T", "true", "TRUE", "True", "On", "ON", "on":
		return true
	default:
		return false
	}
}

type Arguments struct {
	// each arg on its own
	args []Arg
	// the trimmed input
	full string
}

// Argv returns argument i, the empty argument if out of range.
func (c Arguments) Argv(i int) Arg {
	if i < 0 || i >= len(c.args) {
		return Arg{}
	}
	return c.args[i]
}

func (c Arguments) Len() int {
	return len(c.args)
}

func (c Arguments) Full() string {
	return c.full
}

func (c Arguments) Args() []Arg {
	return c.args
}

// Name returns the lower cased command name.
func (c Arguments) Name() string {
	return strings.ToLower(c.Argv(0).String())
}

// ArgumentString returns everything after the command name.
func (c Arguments) ArgumentString() string {
	// args[0] is the cmd
	if len(c.args) < 2 {
		return ""
	}
	r := strings.TrimPrefix(c.full, c.args[0].String())
	r = strings.TrimLeftFunc(r, unicode.IsSpace)
	// the result should not start with " or space.
	if len(r) > 1 && r[0] == '"' {
		r = strings.Trim(r, "\"\t\n\v\f\r ")
	}
	return r
}

// Parse splits a single command line into arguments. Quoted strings are one
// argument and everything after // is dropped.
func Parse(s string) (Arguments, error) {
	args := Arguments{
		full: strings.TrimFunc(s, unicode.IsSpace),
		args: []Arg{},
	}
	l := lex(args.full)
	for {
		i := l.nextItem()
		switch i.typ {
		case itemWord:
			args.args = append(args.args, Arg{i.val})
		case itemString:
			s := strings.TrimPrefix(i.val, `"`)
			s = strings.TrimSuffix(s, `"`)
			args.args = append(args.args, Arg{s})
		case itemSpace:
			continue
		case itemEOF:
			return args, nil
		default:
			return Arguments{}, errors.Wrapf(ErrSyntax, "%s in %q", i, args.full)
		}
	}
}

type itemType int

const (
	itemError itemType = iota
	itemEOF
	itemString // quoted string includes quotes
	itemSpace  // blanks and tabs
	itemWord
)

const eof = -1

type item struct {
	typ itemType
	val string
}

func (i item) String() string {
	switch i.typ {
	case itemEOF:
		return "EOF"
	case itemError:
		return i.val
	}
	if len(i.val) > 10 {
		return fmt.Sprintf("%.10q...", i.val)
	}
	return fmt.Sprintf("%q", i.val)
}

type stateFn func(*lexer) stateFn

type lexer struct {
	input string
	start int
	pos   int
	width int
	items chan item
	state stateFn
}

func lex(input string) *lexer {
	return &lexer{
		input: input,
		items: make(chan item, 2),
		state: lexAction,
	}
}

func (l *lexer) nextItem() item {
	for {
		select {
		case item := <-l.items:
			return item
		default:
			l.state = l.state(l)
		}
	}
}

func (l *lexer) emit(t itemType) {
	l.items <- item{t, l.input[l.start:l.pos]}
	l.start = l.pos
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += l.width
	return r
}

func (l *lexer) backup() {
	l.pos -= l.width
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

func (l *lexer) errorf(format string, args ...any) stateFn {
	l.items <- item{
		itemError,
		fmt.Sprintf(format, args...),
	}
	return nil
}

func lexWord(l *lexer) stateFn {
	for isWordRune(l.next()) {
	}
	l.backup()
	l.emit(itemWord)
	return lexAction
}

func lexAction(l *lexer) stateFn {
	switch r := l.next(); {
	case r == eof || isEndOfLine(r):
		l.emit(itemEOF)
		return nil
	case isSpace(r):
		return lexSpace
	case r == '"':
		return lexQuote
	case r == '/':
		// look ahead without breaking l.backup()
		if l.pos < len(l.input) && l.input[l.pos] == '/' {
			// just drop the rest of this line
			l.emit(itemEOF)
			return nil
		}
		fallthrough
	case isWordRune(r):
		l.backup()
		return lexWord
	default:
		return l.errorf("unhandled char: %#U", r)
	}
}

func lexSpace(l *lexer) stateFn {
	for isSpace(l.peek()) {
		l.next()
	}
	l.emit(itemSpace)
	return lexAction
}

func lexQuote(l *lexer) stateFn {
Loop:
	for {
		switch l.next() {
		case '"':
			break Loop
		case eof, '\n':
			return l.errorf("unterminated string")
		}
	}
	l.emit(itemString)
	return lexAction
}

func isWordRune(r rune) bool {
	return r > ' ' && r != '"'
}

func isEndOfLine(r rune) bool {
	return r == '\r' || r == '\n'
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
