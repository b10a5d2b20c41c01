package scraper

import (
	"errors"
	"fmt"
)

// ErrorKind classifica a falha de extração
type ErrorKind int

const (
	// KindNetwork: requisição falhou, expirou ou voltou com status != 200
	KindNetwork ErrorKind = iota
	// KindNotFound: nenhum seletor encontrou texto utilizável
	KindNotFound
	// KindParse: texto encontrado mas não é um preço válido
	KindParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// ExtractionError é o único tipo de erro devolvido por um Extractor
type ExtractionError struct {
	Kind  ErrorKind
	URL   string
	Cause string
	Err   error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Cause, e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("%s (%s): %s", e.Cause, e.Kind, e.URL)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func networkError(url, cause string, err error) *ExtractionError {
	return &ExtractionError{Kind: KindNetwork, URL: url, Cause: cause, Err: err}
}

func notFoundError(url, cause string) *ExtractionError {
	return &ExtractionError{Kind: KindNotFound, URL: url, Cause: cause}
}

func parseError(url, cause string, err error) *ExtractionError {
	return &ExtractionError{Kind: KindParse, URL: url, Cause: cause, Err: err}
}

// IsKind verifica se err é um ExtractionError do tipo informado
func IsKind(err error, kind ErrorKind) bool {
	var extErr *ExtractionError
	if errors.As(err, &extErr) {
		return extErr.Kind == kind
	}
	return false
}
