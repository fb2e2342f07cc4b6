package models

type EEventLogType string

const (
	PinSubmitted         EEventLogType = "Pin submitted"
	PinRejected          EEventLogType = "Pin rejected"
	PinSaveFailed        EEventLogType = "Pin save failed"
	LocationsFetched     EEventLogType = "Locations fetched"
	LocationsFetchFailed EEventLogType = "Locations fetch failed"
	Warning              EEventLogType = "Warning"
)
