package bot

import (
	"errors"
	"strings"

	"github.com/spendario/spendario/pkg/calendar"
	"github.com/spendario/spendario/pkg/expense"
	"github.com/spendario/spendario/pkg/google"
	"github.com/spendario/spendario/pkg/nlp"
)

// Fixed Italian surfaces for the error classes a user can hit. No raw
// backend error ever reaches the chat.
const (
	msgSheetsUnavailable   = "Impossibile accedere al foglio delle spese."
	msgCalendarUnavailable = "Impossibile accedere al servizio Calendar."
	msgOpenAIUnavailable   = "Impossibile accedere al servizio OpenAI. Verifica la chiave API."

	msgAmountNotANumber  = "L'importo deve essere un numero. Riprova:"
	msgAmountNotPositive = "L'importo deve essere maggiore di zero. Riprova:"

	msgNoTitle         = "Non è stato possibile identificare il titolo dell'evento."
	msgNoStart         = "Non è stato possibile identificare la data e l'ora dell'evento."
	msgBadReply        = "Errore nel parsing della risposta. Riprova con una richiesta più chiara."
	msgNothingToChange = "Non è stato possibile identificare alcuna modifica da apportare all'evento."
	msgExtractionError = "Errore nell'elaborazione della richiesta."

	msgEventNotFound  = "Evento non trovato. Riprova."
	msgTargetNotFound = "Non è stato possibile identificare quale evento eliminare. Prova a essere più specifico."
	msgBadEventNumber = "Numero evento non valido."

	msgCancelled = "Operazione annullata."
	msgNoEvents  = "Nessun evento in programma."
	msgHint      = "Ho ricevuto il tuo messaggio. Usa i comandi specifici per gestire spese o eventi.\nDigita /help per vedere i comandi disponibili."

	waitProcessing     = "Sto elaborando la tua richiesta..."
	waitFetchingEvents = "Sto recuperando gli eventi..."
	waitDeleting       = "Sto cancellando l'evento..."
)

const helpText = "Ecco i comandi disponibili:\n\n" +
	"*Gestione Spese:*\n" +
	"/spesa - Registra una nuova spesa\n" +
	"/report - Ottieni un report delle tue spese\n" +
	"/report_giorno - Report spese del giorno\n" +
	"/report_settimana - Report spese della settimana\n" +
	"/report_mese - Report spese del mese\n" +
	"/report_anno - Report spese dell'anno\n\n" +
	"*Gestione Calendario:*\n" +
	"/evento - Aggiungi un evento al calendario\n" +
	"/eventi - Visualizza i prossimi eventi\n" +
	"/modifica_evento - Modifica un evento esistente\n" +
	"/cancella_evento - Cancella un evento esistente\n"

func invalidCategoryMessage(categories []string) string {
	return "Categoria non valida. Categorie disponibili: " + strings.Join(categories, ", ")
}

// retryExtraction wraps an extraction failure so the user knows the flow is
// still waiting for a clearer description.
func retryExtraction(message string) string {
	return "Errore: " + message + "\n\nRiprova con una descrizione più chiara o usa /cancel per annullare."
}

// retrySelection wraps a deletion-target failure so the user knows the flow
// is still waiting for a selection.
func retrySelection(message string) string {
	return "Errore: " + message + "\n\nRiprova o invia /cancel per annullare."
}

// extractionMessage maps extractor failures onto their Italian surface.
func extractionMessage(err error) string {
	switch {
	case errors.Is(err, nlp.ErrNoAPIKey):
		return msgOpenAIUnavailable
	case errors.Is(err, nlp.ErrNoTitle):
		return msgNoTitle
	case errors.Is(err, nlp.ErrNoStart):
		return msgNoStart
	case errors.Is(err, nlp.ErrNothingToChange):
		return msgNothingToChange
	case errors.Is(err, nlp.ErrBadReply):
		return msgBadReply
	default:
		return msgExtractionError
	}
}

// resolutionMessage maps deletion-target resolution failures onto their
// Italian surface.
func resolutionMessage(err error) string {
	switch {
	case errors.Is(err, nlp.ErrNoAPIKey):
		return msgOpenAIUnavailable
	case errors.Is(err, nlp.ErrTargetNotFound):
		return msgTargetNotFound
	case errors.Is(err, nlp.ErrBadIndex):
		return msgBadEventNumber
	default:
		return msgExtractionError
	}
}

// calendarMessage maps calendar service failures onto their Italian surface,
// falling back to the operation-specific message.
func calendarMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, google.ErrNoCredentials):
		return msgCalendarUnavailable
	case errors.Is(err, calendar.ErrNotFound):
		return msgEventNotFound
	default:
		return fallback
	}
}

// sheetsMessage maps expense service failures onto their Italian surface,
// falling back to the operation-specific message.
func sheetsMessage(err error, categories []string, fallback string) string {
	switch {
	case errors.Is(err, google.ErrNoCredentials):
		return msgSheetsUnavailable
	case errors.Is(err, expense.ErrInvalidCategory):
		return invalidCategoryMessage(categories)
	default:
		return fallback
	}
}
