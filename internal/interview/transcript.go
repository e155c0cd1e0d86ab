package interview

// Role определяет автора сообщения в транскрипте
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message представляет одно сообщение диалога. После создания не меняется.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript хранит упорядоченную историю сообщений одной сессии.
// Первое сообщение, если оно есть, всегда системное.
type Transcript struct {
	messages []Message
}

// Len возвращает количество сообщений
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Messages возвращает копию сообщений в порядке добавления
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Last возвращает последнее сообщение
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

func (t *Transcript) append(msg Message) {
	t.messages = append(t.messages, msg)
}

// truncate откатывает транскрипт к длине n
func (t *Transcript) truncate(n int) {
	if n < len(t.messages) {
		clear(t.messages[n:])
		t.messages = t.messages[:n]
	}
}

func (t *Transcript) hasAnswer() bool {
	for _, msg := range t.messages {
		if msg.Role == RoleUser {
			return true
		}
	}
	return false
}
