package genetic

import "time"

func timeFromRaw(raw int64) time.Time { return time.Unix(raw, 0).UTC() }
