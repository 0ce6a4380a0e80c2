package util

import "errors"

var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrWrongPassword        = errors.New("wrong class password")
	ErrInstructorLocked     = errors.New("instructor tools are locked")
	ErrAppClosed            = errors.New("app is closed right now")
	ErrSessionNotFound      = errors.New("session not found or expired")
	ErrUnknownRecordKind    = errors.New("unknown record kind")
	ErrUnknownColumn        = errors.New("unknown column for record kind")
	ErrAssignmentNotFound   = errors.New("assignment not found for your group")
	ErrAssignmentInvalid    = errors.New("please fill title and source text")
	ErrGroupRequired        = errors.New("enter your group code to see assignments")
	ErrNoWorkflow           = errors.New("no assignment opened in this session")
	ErrWorkflowSubmitted    = errors.New("assignment already submitted, open it again to start a new submission")
	ErrNotPostEdit          = errors.New("assignment is not in post-edit mode")
	ErrDraftRequired        = errors.New("write your own draft before the machine draft is shown")
	ErrNothingToAnalyze     = errors.New("write a translation before asking for analysis")
	ErrEmptyText            = errors.New("text must not be empty")
	ErrNoQuiz               = errors.New("no quiz in this session")
	ErrQuizItemOutOfRange   = errors.New("quiz item out of range")
	ErrStorageNotConfigured = errors.New("storage provider not configured")
	ErrArchiveNameInvalid   = errors.New("not an archive file name")
	ErrArchiveNotFound      = errors.New("archive not found")
)
