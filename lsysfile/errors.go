// SPDX-License-Identifier: MIT

package lsysfile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCyclicInclude indicates a file that includes itself, directly or not.
	ErrCyclicInclude = errors.New("lsysfile: cyclic include")

	// ErrMissingFile indicates an include that the provider cannot read.
	ErrMissingFile = errors.New("lsysfile: missing file")

	// ErrMissingExport indicates an import of a name the library does not export.
	ErrMissingExport = errors.New("lsysfile: missing export")

	// ErrImportCollision indicates two imports bound to one character.
	ErrImportCollision = errors.New("lsysfile: import collision")

	// ErrImportDissonance indicates one export imported under two characters.
	ErrImportDissonance = errors.New("lsysfile: import dissonance")

	// ErrDuplicateDefine indicates a #define declared by two files.
	ErrDuplicateDefine = errors.New("lsysfile: duplicate compile time variable")

	// ErrDuplicateRuntime indicates a #runtime declared by two files.
	ErrDuplicateRuntime = errors.New("lsysfile: duplicate runtime variable")

	// ErrOriginIsLibrary indicates linking started from a .lsyslib file.
	ErrOriginIsLibrary = errors.New("lsysfile: origin file is a library")
)

// LinkKind classifies a LinkError.
type LinkKind int

const (
	KindCyclicInclude LinkKind = iota
	KindMissingFile
	KindMissingExport
	KindImportCollision
	KindImportDissonance
	KindDuplicateDefine
	KindDuplicateRuntime
	KindOriginIsLibrary
)

var kindSentinels = [...]error{
	KindCyclicInclude:    ErrCyclicInclude,
	KindMissingFile:      ErrMissingFile,
	KindMissingExport:    ErrMissingExport,
	KindImportCollision:  ErrImportCollision,
	KindImportDissonance: ErrImportDissonance,
	KindDuplicateDefine:  ErrDuplicateDefine,
	KindDuplicateRuntime: ErrDuplicateRuntime,
	KindOriginIsLibrary:  ErrOriginIsLibrary,
}

func (k LinkKind) sentinel() error {
	if k < 0 || int(k) >= len(kindSentinels) {
		return nil
	}

	return kindSentinels[k]
}

// LinkError reports a failure to link a file set. Files lists the files
// involved; for a cycle it is the include path, ending where it started.
type LinkError struct {
	Kind    LinkKind
	Message string
	Files   []string
}

func newLinkError(kind LinkKind, files []string, format string, args ...any) *LinkError {
	return &LinkError{Kind: kind, Message: fmt.Sprintf(format, args...), Files: files}
}

func (e *LinkError) Error() string {
	var b strings.Builder
	if s := e.Kind.sentinel(); s != nil {
		b.WriteString(s.Error())
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if len(e.Files) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Files, " -> "))
		b.WriteString("]")
	}

	return b.String()
}

// Is matches the sentinel of e's kind.
func (e *LinkError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}
