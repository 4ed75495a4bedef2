package model

// Log is the raw text of a build or a crashed container.
// It may span many lines; nothing here reformats it.
type Log string

func NewLog(s string) Log {
	return Log(s)
}

func (l Log) String() string {
	return string(l)
}
