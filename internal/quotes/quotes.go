// Package quotes holds the verse shown on the Today view.
package quotes

import "time"

type Quote struct {
	Text   string
	Source string
}

var all = []Quote{
	{"O you who have believed, decreed upon you is fasting as it was decreed upon those before you that you may become righteous.", "Quran 2:183"},
	{"The Messenger of Allah said: 'Whoever fasts Ramadan out of faith and hope for reward, his past sins will be forgiven.'", "Bukhari & Muslim"},
	{"Indeed, Allah is with those who fear Him and those who are doers of good.", "Quran 16:128"},
	{"The Prophet said: 'There are two occasions of joy for one who fasts: one when he breaks the fast and the other when he will meet his Lord.'", "Bukhari & Muslim"},
	{"And seek help through patience and prayer, and indeed, it is difficult except for the humbly submissive.", "Quran 2:45"},
	{"The Messenger of Allah said: 'When the month of Ramadan starts, the gates of the heaven are opened and the gates of Hell are closed and the devils are chained.'", "Bukhari & Muslim"},
	{"Indeed, with hardship comes ease.", "Quran 94:6"},
	{"Give glad tidings to those who patiently persevere.", "Quran 2:155"},
	{"The Prophet said: 'He who gives food for a fasting person to break his fast, he will receive the same reward as him, except that nothing will be reduced from the fasting persons reward.'", "Tirmidhi"},
	{"And Allah is the best of providers.", "Quran 62:11"},
}

// All returns every quote.
func All() []Quote {
	out := make([]Quote, len(all))
	copy(out, all)
	return out
}

// ForDay picks the quote for day's calendar date. The same date always
// yields the same quote and consecutive dates cycle through the list.
func ForDay(day time.Time) Quote {
	y, m, d := day.Date()
	days := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
	i := int(days % int64(len(all)))
	if i < 0 {
		i += len(all)
	}
	return all[i]
}
