package bot

import "sync"

// SentMessage is one outbound message recorded by the MessengerStub.
type SentMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Markdown  bool
	Rows      [][]Button
}

// EditedMessage is one in-place edit recorded by the MessengerStub.
type EditedMessage struct {
	ChatID    int64
	MessageID int
	Text      string
	Markdown  bool
}

// DeletedMessage is one deletion recorded by the MessengerStub.
type DeletedMessage struct {
	ChatID    int64
	MessageID int
}

// MessengerStub is an in-memory Messenger for tests. Message ids are assigned
// sequentially starting from 1.
type MessengerStub struct {
	mu        sync.RWMutex
	nextID    int
	sent      []SentMessage
	edited    []EditedMessage
	deleted   []DeletedMessage
	answered  []string
	sendErr   error
	editErr   error
	deleteErr error
}

func NewMessengerStub() *MessengerStub {
	return &MessengerStub{}
}

func (s *MessengerStub) Send(chatID int64, text string) (int, error) {
	return s.record(chatID, text, false, nil)
}

func (s *MessengerStub) SendMarkdown(chatID int64, text string) (int, error) {
	return s.record(chatID, text, true, nil)
}

func (s *MessengerStub) SendOptions(chatID int64, text string, rows [][]Button) (int, error) {
	return s.record(chatID, text, true, rows)
}

func (s *MessengerStub) record(chatID int64, text string, markdown bool, rows [][]Button) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return 0, s.sendErr
	}
	s.nextID++
	s.sent = append(s.sent, SentMessage{
		ChatID:    chatID,
		MessageID: s.nextID,
		Text:      text,
		Markdown:  markdown,
		Rows:      rows,
	})
	return s.nextID, nil
}

func (s *MessengerStub) Edit(chatID int64, messageID int, text string) error {
	return s.recordEdit(chatID, messageID, text, false)
}

func (s *MessengerStub) EditMarkdown(chatID int64, messageID int, text string) error {
	return s.recordEdit(chatID, messageID, text, true)
}

func (s *MessengerStub) recordEdit(chatID int64, messageID int, text string, markdown bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editErr != nil {
		return s.editErr
	}
	s.edited = append(s.edited, EditedMessage{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		Markdown:  markdown,
	})
	return nil
}

func (s *MessengerStub) Delete(chatID int64, messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, DeletedMessage{ChatID: chatID, MessageID: messageID})
	return nil
}

func (s *MessengerStub) AnswerCallback(callbackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answered = append(s.answered, callbackID)
	return nil
}

// Sent returns a copy of the recorded outbound messages in order.
func (s *MessengerStub) Sent() []SentMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sent := make([]SentMessage, len(s.sent))
	copy(sent, s.sent)
	return sent
}

// LastSent returns the most recent outbound message, if any.
func (s *MessengerStub) LastSent() (SentMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.sent) == 0 {
		return SentMessage{}, false
	}
	return s.sent[len(s.sent)-1], true
}

// Texts returns the texts of the recorded outbound messages in order.
func (s *MessengerStub) Texts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	texts := make([]string, 0, len(s.sent))
	for _, message := range s.sent {
		texts = append(texts, message.Text)
	}
	return texts
}

// Edited returns a copy of the recorded edits in order.
func (s *MessengerStub) Edited() []EditedMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edited := make([]EditedMessage, len(s.edited))
	copy(edited, s.edited)
	return edited
}

// LastEdited returns the most recent edit, if any.
func (s *MessengerStub) LastEdited() (EditedMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.edited) == 0 {
		return EditedMessage{}, false
	}
	return s.edited[len(s.edited)-1], true
}

// Deleted returns a copy of the recorded deletions in order.
func (s *MessengerStub) Deleted() []DeletedMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deleted := make([]DeletedMessage, len(s.deleted))
	copy(deleted, s.deleted)
	return deleted
}

// Answered returns the callback query ids acknowledged so far.
func (s *MessengerStub) Answered() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answered := make([]string, len(s.answered))
	copy(answered, s.answered)
	return answered
}

func (s *MessengerStub) SetSendError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendErr = err
}

func (s *MessengerStub) SetEditError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editErr = err
}

func (s *MessengerStub) SetDeleteError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

func (s *MessengerStub) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = 0
	s.sent = nil
	s.edited = nil
	s.deleted = nil
	s.answered = nil
	s.sendErr = nil
	s.editErr = nil
	s.deleteErr = nil
}
