package model

// Duration is a video length entered as hours, minutes, and seconds.
// Minutes and seconds may temporarily exceed 59 during user entry;
// Normalize carries the overflow upward.
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// Normalize returns a copy with seconds and minutes reduced below 60,
// carrying overflow into the next field up (60s → +1m, 60m → +1h).
func (d Duration) Normalize() Duration {
	d.Minutes += d.Seconds / 60
	d.Seconds %= 60
	d.Hours += d.Minutes / 60
	d.Minutes %= 60
	return d
}

// TotalSeconds returns the duration in seconds. Carry state does not
// matter: the sum is the same before and after Normalize.
func (d Duration) TotalSeconds() int64 {
	return int64(d.Hours)*3600 + int64(d.Minutes)*60 + int64(d.Seconds)
}
