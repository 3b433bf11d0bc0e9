package events

// Task event names. History tracking subscribes to all of them; the
// lifecycle code only publishes and never depends on the subscribers.
const (
	TaskCreated     = "task.created"
	TaskUpdated     = "task.updated"
	TaskCompleted   = "task.completed"
	TaskStatusMoved = "task.status.changed"
	AssigneeAdded   = "task.assignee.added"
	AssigneeRemoved = "task.assignee.removed"
	FollowerAdded   = "task.follower.added"
	FollowerRemoved = "task.follower.removed"
	CommentAdded    = "task.comment.added"
)

type TaskCreatedEvent struct {
	TaskID uint64
	UserID uint64
	Title  string
}

type TaskUpdatedEvent struct {
	TaskID  uint64
	UserID  uint64
	Changes string
}

type TaskCompletedEvent struct {
	TaskID         uint64
	UserID         uint64
	IsAutoComplete bool
}

type TaskStatusChangedEvent struct {
	TaskID    uint64
	UserID    uint64
	OldStatus string
	NewStatus string
}

type TaskAssigneeEvent struct {
	TaskID     uint64
	UserID     uint64
	AssigneeID uint64
}

type TaskFollowerEvent struct {
	TaskID     uint64
	UserID     uint64
	FollowerID uint64
}

type TaskCommentEvent struct {
	TaskID    uint64
	UserID    uint64
	CommentID uint64
	Content   string
}
