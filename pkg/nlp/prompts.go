package nlp

import (
	"fmt"
	"strings"
	"time"

	"github.com/spendario/spendario/pkg/calendar"
)

var italianWeekdays = [...]string{
	"domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato",
}

// currentDateLine anchors relative dates ("domani", weekday names) in the
// prompts to the actual current date.
func currentDateLine(now time.Time) string {
	return fmt.Sprintf("Oggi è %s %s e sono le ore %s.",
		italianWeekdays[now.Weekday()], now.Format("2006-01-02"), now.Format("15:04"))
}

func eventSystemPrompt(now time.Time) string {
	return fmt.Sprintf(`Sei un assistente che aiuta a estrarre informazioni sugli eventi dal testo in italiano.
%s
Estrai le seguenti informazioni:
1. Titolo dell'evento
2. Data e ora di inizio
3. Data e ora di fine (se specificata)
4. Luogo (se specificato)
5. Descrizione (se specificata)

Rispondi SOLO con un oggetto JSON con i seguenti campi:
{
    "summary": "Titolo dell'evento",
    "start_time": "YYYY-MM-DD HH:MM",
    "end_time": "YYYY-MM-DD HH:MM" o null se non specificato,
    "location": "Luogo dell'evento" o "" se non specificato,
    "description": "Descrizione dell'evento" o "" se non specificata
}

Se la data non è specificata, usa la data di oggi.
Se l'ora non è specificata, usa le 12:00 come orario predefinito.
Se la data è specificata come "domani", "dopodomani", "lunedì", ecc., convertila nella data effettiva partendo da oggi.`,
		currentDateLine(now))
}

func updateSystemPrompt(now time.Time) string {
	return fmt.Sprintf(`Sei un assistente che aiuta a estrarre informazioni per aggiornare un evento esistente dal testo in italiano.
%s
Estrai le seguenti informazioni, solo se menzionate nel testo:
1. Nuovo titolo dell'evento
2. Nuova data e ora di inizio
3. Nuova data e ora di fine
4. Nuovo luogo
5. Nuova descrizione

Rispondi SOLO con un oggetto JSON con i seguenti campi:
{
    "summary": "Nuovo titolo dell'evento" o null se non menzionato,
    "start_time": "YYYY-MM-DD HH:MM" o null se non menzionata,
    "end_time": "YYYY-MM-DD HH:MM" o null se non menzionata,
    "location": "Nuovo luogo dell'evento" o null se non menzionato,
    "description": "Nuova descrizione dell'evento" o null se non menzionata
}

Se la data è specificata come "domani", "dopodomani", "lunedì", ecc., convertila nella data effettiva partendo da oggi.`,
		currentDateLine(now))
}

func targetSystemPrompt(candidates []calendar.Event, loc *time.Location) string {
	var list strings.Builder
	for i, event := range candidates {
		list.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, event.Summary, formatCandidateStart(event, loc)))
	}

	return fmt.Sprintf(`Sei un assistente che aiuta a identificare quale evento eliminare dal calendario.
Ecco l'elenco degli eventi disponibili:

%s
Analizza la richiesta dell'utente e identifica quale evento vuole eliminare.
Rispondi SOLO con il numero dell'evento da eliminare (1, 2, 3, ecc.) o con "non trovato" se non riesci a identificare l'evento.`,
		list.String())
}

func formatCandidateStart(event calendar.Event, loc *time.Location) string {
	if event.AllDay {
		return event.Start.In(loc).Format("02/01/2006") + " (tutto il giorno)"
	}
	return event.Start.In(loc).Format("02/01/2006 15:04")
}
