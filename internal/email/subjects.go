package email

const (
	subjectHandoffFmt = "Novo lead qualificado: %s"
)
