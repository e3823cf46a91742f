package index

import (
	"errors"
	"fmt"
)

// ErrNoRetrieve is wrapped by RetrievalError when a document has to be
// fetched but no Retrieve function was configured.
var ErrNoRetrieve = errors.New("no retrieve function configured")

type RefNotFoundError struct {
	Ref      string
	Location string // schema path of the keyword holding Ref
	Err      error
}

func (e *RefNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: reference %q not found: %v", e.Location, e.Ref, e.Err)
	}
	return fmt.Sprintf("%s: reference %q not found", e.Location, e.Ref)
}

func (e *RefNotFoundError) Unwrap() error {
	return e.Err
}

// --

type AnchorNotFoundError struct {
	URI    string
	Anchor string
}

func (e *AnchorNotFoundError) Error() string {
	return fmt.Sprintf("anchor %q not found in %q", e.Anchor, e.URI)
}

// --

type ParseIDError struct {
	ID  string
	Err error
}

func (e *ParseIDError) Error() string {
	return fmt.Sprintf("error in parsing id %q: %v", e.ID, e.Err)
}

func (e *ParseIDError) Unwrap() error {
	return e.Err
}

// --

type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate id %q", e.ID)
}

// --

type DuplicateAnchorError struct {
	Anchor string
	URI    string
}

func (e *DuplicateAnchorError) Error() string {
	return fmt.Sprintf("duplicate anchor %q in %q", e.Anchor, e.URI)
}

// --

type RetrievalError struct {
	URI string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieving %q: %v", e.URI, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// --

type MetaSchemaNotFoundError struct {
	URI string
	Err error
}

func (e *MetaSchemaNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("meta-schema %q not found: %v", e.URI, e.Err)
	}
	return fmt.Sprintf("meta-schema %q not found", e.URI)
}

func (e *MetaSchemaNotFoundError) Unwrap() error {
	return e.Err
}
