package service

import "time"

// Clock supplies the current time to the lifecycle engine.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }
