package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации запроса
	ErrValidationFailed     = errors.New("validation failed")
	ErrTournamentIDRequired = errors.New("tournament id is required")
	ErrPrizeIDRequired      = errors.New("prize id is required")
	ErrPlayerIDRequired     = errors.New("player id is required")
	ErrPlayerNotInRoster    = errors.New("player is not in the roster")
	ErrPrizeNotInCatalog    = errors.New("prize is not in the catalog")

	// Ошибки жизненного цикла превью/коммита
	ErrPreviewRequired      = errors.New("a preview run is required before this operation")
	ErrStaleCommit          = errors.New("commit rejected: inputs disagree with the last preview")
	ErrUnresolvedConflicts  = errors.New("commit rejected: unresolved conflicts remain")
	ErrCriticalCoverage     = errors.New("commit rejected: critical coverage entries present")
	ErrConflictNotFound     = errors.New("conflict not found in the last preview")
	ErrConflictNoSuggestion = errors.New("conflict carries no suggested resolution")

	// Ошибки версий
	ErrVersionNotFound = errors.New("published version not found")
)
