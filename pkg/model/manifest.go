package model

type ManifestName string

func (m ManifestName) String() string { return string(m) }
