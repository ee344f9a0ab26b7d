package dashboard

import "errors"

var (
	// ErrNoSession is returned by selection operations when the catalog modal is closed.
	ErrNoSession = errors.New("dashboard: no selection session is open")
	// ErrUnknownTab is returned when a tab key is not part of the catalog.
	ErrUnknownTab = errors.New("dashboard: unknown tab")
	// ErrCannotPlaceWidget is returned under PolicyReject when a selected template has no home category.
	ErrCannotPlaceWidget = errors.New("dashboard: cannot place widget")
	// ErrInvalidWidgetID is returned when a widget id is empty.
	ErrInvalidWidgetID = errors.New("dashboard: widget id is required")

	errMissingStore    = errors.New("dashboard: store not configured")
	errMissingCatalog  = errors.New("dashboard: catalog not configured")
	errMissingTabKey   = errors.New("dashboard: tab key is required")
	errInvalidCategory = errors.New("dashboard: category id is required")
)
