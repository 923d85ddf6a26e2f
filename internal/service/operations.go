package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/pkg/cache"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

// Query is a cached read. Record extracts the record id for reads whose
// provided tags include a per-record tag.
type Query[A any, R any] struct {
	Name   string
	Fetch  func(ctx context.Context, args A) (R, error)
	Record func(args A) string
}

// Mutation is a write. Record extracts the id of the record it touched.
type Mutation[P any, R any] struct {
	Name   string
	Exec   func(ctx context.Context, payload P) (R, error)
	Record func(payload P, result R) string
}

// Update pairs a record id with an update body.
type Update[T any] struct {
	ID   string `json:"id"`
	Body T      `json:"body"`
}

// Operations runs queries through the query cache and invalidates after
// successful mutations.
type Operations struct {
	cache  *cache.QueryCache
	logger *zap.Logger
}

// NewOperations wires the operation layer to a cache.
func NewOperations(c *cache.QueryCache, logger *zap.Logger) *Operations {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Operations{cache: c, logger: logger}
}

// Cache exposes the underlying query cache.
func (o *Operations) Cache() *cache.QueryCache {
	return o.cache
}

// Run executes q with args, serving it from cache when fresh.
func Run[A any, R any](ctx context.Context, o *Operations, q Query[A, R], args A) (R, error) {
	var zero R
	value, err := o.cache.Get(ctx, cache.Key(q.Name, args), q.tags(args), q.fetcher(args))
	if err != nil {
		return zero, err
	}
	return as[R](q.Name, value)
}

// Watch runs q and keeps fn informed of every later fetch of the same key,
// including refetches caused by invalidation.
func Watch[A any, R any](ctx context.Context, o *Operations, q Query[A, R], args A, fn func(R, error)) (cache.Subscription, R, error) {
	var zero R
	listener := func(value interface{}, err error) {
		if value == nil {
			fn(zero, err)
			return
		}
		out, castErr := as[R](q.Name, value)
		if err == nil {
			err = castErr
		}
		fn(out, err)
	}
	sub, value, err := o.cache.Subscribe(ctx, cache.Key(q.Name, args), q.tags(args), q.fetcher(args), listener)
	if err != nil {
		return sub, zero, err
	}
	out, err := as[R](q.Name, value)
	return sub, out, err
}

// Exec runs m and, on success, invalidates the tags listed for it.
func Exec[P any, R any](ctx context.Context, o *Operations, m Mutation[P, R], payload P) (R, error) {
	out, err := m.Exec(ctx, payload)
	if err != nil {
		o.logger.Debug("mutation_failed", zap.String("op", m.Name), zap.Error(err))
		return out, err
	}
	id := ""
	if m.Record != nil {
		id = m.Record(payload, out)
	}
	tags := resolve(invalidates[m.Name], id)
	if n := o.cache.Invalidate(tags...); n > 0 {
		o.logger.Debug("mutation_invalidated", zap.String("op", m.Name), zap.Int("entries", n))
	}
	return out, nil
}

func (q Query[A, R]) tags(args A) []cache.Tag {
	id := ""
	if q.Record != nil {
		id = q.Record(args)
	}
	return resolve(provides[q.Name], id)
}

func (q Query[A, R]) fetcher(args A) cache.Fetcher {
	return func(ctx context.Context) (interface{}, error) {
		return q.Fetch(ctx, args)
	}
}

func as[R any](op string, value interface{}) (R, error) {
	var zero R
	if value == nil {
		return zero, nil
	}
	out, ok := value.(R)
	if !ok {
		return zero, appErrors.Wrap(fmt.Errorf("cached %T for %s", value, op), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
	}
	return out, nil
}

// ListTag is the id list reads use for their type-level tag.
const ListTag = "LIST"

// tagRule describes one tag in the static tables. PerRecord rules take the
// operation's record id.
type tagRule struct {
	Type      string
	ID        string
	PerRecord bool
}

func (r tagRule) String() string {
	switch {
	case r.PerRecord:
		return r.Type + ":{id}"
	case r.ID != "":
		return r.Type + ":" + r.ID
	default:
		return r.Type
	}
}

func list(typ string) tagRule   { return tagRule{Type: typ, ID: ListTag} }
func record(typ string) tagRule { return tagRule{Type: typ, PerRecord: true} }
func every(typ string) tagRule  { return tagRule{Type: typ} }

func resolve(rules []tagRule, id string) []cache.Tag {
	tags := make([]cache.Tag, 0, len(rules))
	for _, r := range rules {
		switch {
		case r.PerRecord && id != "":
			tags = append(tags, cache.RecordTag(r.Type, id))
		case r.PerRecord:
			tags = append(tags, cache.TypeTag(r.Type))
		default:
			tags = append(tags, cache.Tag{Type: r.Type, ID: r.ID})
		}
	}
	return tags
}

// Tag types.
const (
	TagProfile     = "Profile"
	TagUser        = "User"
	TagStudent     = "Student"
	TagTeacher     = "Teacher"
	TagFee         = "Fee"
	TagPayment     = "Payment"
	TagBook        = "Book"
	TagBorrow      = "Borrow"
	TagAssignment  = "Assignment"
	TagSubmission  = "Submission"
	TagNotice      = "Notice"
	TagMessage     = "Message"
	TagUnreadCount = "UnreadCount"
	TagRole        = "Role"
	TagPermission  = "Permission"
	TagSettings    = "Settings"
	TagBackup      = "Backup"
)

// provides maps each read to the tags its results carry.
var provides = map[string][]tagRule{
	"auth.profile": {every(TagProfile)},

	"users.list":  {list(TagUser)},
	"users.get":   {record(TagUser)},
	"users.stats": {list(TagUser)},

	"students.list":     {list(TagStudent)},
	"students.get":      {record(TagStudent)},
	"students.byParent": {list(TagStudent)},

	"teachers.list": {list(TagTeacher)},
	"teachers.get":  {record(TagTeacher)},

	"fees.list":      {list(TagFee)},
	"fees.get":       {record(TagFee)},
	"fees.payments":  {record(TagPayment)},
	"fees.byStudent": {list(TagFee)},
	"fees.summary":   {list(TagFee)},

	"library.books":   {list(TagBook)},
	"library.book":    {record(TagBook)},
	"library.borrows": {list(TagBorrow)},
	"library.overdue": {list(TagBorrow)},

	"assignments.list":               {list(TagAssignment)},
	"assignments.get":                {record(TagAssignment)},
	"assignments.submissions":        {record(TagSubmission)},
	"assignments.studentSubmissions": {list(TagSubmission)},

	"notices.list": {list(TagNotice)},
	"notices.get":  {record(TagNotice)},

	"messages.inbox":       {list(TagMessage)},
	"messages.sent":        {list(TagMessage)},
	"messages.get":         {record(TagMessage)},
	"messages.unreadCount": {every(TagUnreadCount)},

	"roles.list":        {list(TagRole)},
	"roles.get":         {record(TagRole)},
	"roles.permissions": {every(TagPermission)},

	"settings.get":     {every(TagSettings)},
	"settings.backups": {every(TagBackup)},
}

// invalidates maps each write to the tags it makes stale.
var invalidates = map[string][]tagRule{
	"auth.updateProfile":  {every(TagProfile), list(TagUser), record(TagUser)},
	"auth.uploadAvatar":   {every(TagProfile), list(TagUser), record(TagUser)},
	"auth.changePassword": {every(TagProfile)},

	"users.create":     {list(TagUser), list(TagStudent), list(TagTeacher)},
	"users.update":     {list(TagUser), record(TagUser)},
	"users.activate":   {list(TagUser), record(TagUser)},
	"users.deactivate": {list(TagUser), record(TagUser)},
	"users.import":     {every(TagUser), list(TagStudent), list(TagTeacher)},

	"students.create": {list(TagStudent), list(TagUser)},
	"students.update": {list(TagStudent), record(TagStudent)},

	"teachers.create": {list(TagTeacher), list(TagUser)},
	"teachers.update": {list(TagTeacher), record(TagTeacher)},

	"fees.create": {list(TagFee)},
	"fees.update": {list(TagFee), record(TagFee)},
	"fees.delete": {list(TagFee), record(TagFee)},
	"fees.pay":    {list(TagFee), record(TagFee), record(TagPayment)},

	"library.createBook": {list(TagBook)},
	"library.updateBook": {list(TagBook), record(TagBook)},
	"library.deleteBook": {list(TagBook), record(TagBook)},
	"library.borrow":     {list(TagBorrow), every(TagBook)},
	"library.return":     {list(TagBorrow), every(TagBook)},
	"library.renew":      {list(TagBorrow), every(TagBook)},

	"assignments.create": {list(TagAssignment)},
	"assignments.update": {list(TagAssignment), record(TagAssignment)},
	"assignments.delete": {list(TagAssignment), record(TagAssignment)},
	"assignments.submit": {every(TagSubmission)},
	"assignments.grade":  {every(TagSubmission)},

	"notices.create": {list(TagNotice)},
	"notices.update": {list(TagNotice), record(TagNotice)},
	"notices.delete": {list(TagNotice), record(TagNotice)},

	"messages.send":     {list(TagMessage)},
	"messages.reply":    {list(TagMessage), record(TagMessage)},
	"messages.markRead": {list(TagMessage), record(TagMessage), every(TagUnreadCount)},
	"messages.delete":   {list(TagMessage), record(TagMessage), every(TagUnreadCount)},

	"roles.create": {list(TagRole)},
	"roles.update": {list(TagRole), record(TagRole)},
	"roles.delete": {list(TagRole), record(TagRole)},

	"settings.update":       {every(TagSettings)},
	"settings.createBackup": {every(TagBackup)},
	"settings.restore":      {every(TagSettings), every(TagBackup), every(TagPermission)},
}

// Graph is the inspectable form of the static tag tables.
type Graph struct {
	Provides    map[string][]string `json:"provides"`
	Invalidates map[string][]string `json:"invalidates"`
}

// InvalidationGraph returns the read and write tag tables.
func InvalidationGraph() Graph {
	return Graph{Provides: render(provides), Invalidates: render(invalidates)}
}

// Affected lists the reads whose cached results a write makes stale.
func (g Graph) Affected(write string) []string {
	var reads []string
	for read := range provides {
		if overlaps(invalidates[write], provides[read]) {
			reads = append(reads, read)
		}
	}
	sort.Strings(reads)
	return reads
}

func overlaps(written, provided []tagRule) bool {
	for _, w := range written {
		for _, p := range provided {
			if w.Type != p.Type {
				continue
			}
			if (w.ID == "" && !w.PerRecord) || (w.PerRecord && p.PerRecord) || (w.ID != "" && w.ID == p.ID) {
				return true
			}
		}
	}
	return false
}

func render(table map[string][]tagRule) map[string][]string {
	out := make(map[string][]string, len(table))
	for op, rules := range table {
		names := make([]string, len(rules))
		for i, r := range rules {
			names[i] = r.String()
		}
		out[op] = names
	}
	return out
}
