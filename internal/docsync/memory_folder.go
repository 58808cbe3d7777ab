package docsync

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// OpLog records calls made against one or more MemoryFolders, in order
type OpLog struct {
	ops []Op
}

func (l *OpLog) record(op Op) {
	l.ops = append(l.ops, op)
}

func (l *OpLog) Ops() []Op {
	return append([]Op(nil), l.ops...)
}

type memFile struct {
	content    []byte
	modifiedAt time.Time
}

// MemoryFolder is an in-process Folder. It backs tests and lets a run be
// exercised end to end without touching either cloud service.
type MemoryFolder struct {
	name     string
	files    map[string]*memFile
	extra    []FileRecord
	failures map[Op]error
	log      *OpLog
}

// NewMemoryFolder creates an empty folder. Calls are recorded into log, which
// may be shared between folders to observe the global call order.
func NewMemoryFolder(name string, log *OpLog) *MemoryFolder {
	if log == nil {
		log = &OpLog{}
	}
	return &MemoryFolder{
		name:     name,
		files:    make(map[string]*memFile),
		failures: make(map[Op]error),
		log:      log,
	}
}

// Put seeds a file without recording a call
func (m *MemoryFolder) Put(name string, content []byte) {
	m.files[name] = &memFile{content: content, modifiedAt: time.Now()}
}

// AppendListing adds a raw entry to every List result, even if a file of the
// same name exists. Used to simulate services that allow duplicate names.
func (m *MemoryFolder) AppendListing(rec FileRecord) {
	m.extra = append(m.extra, rec)
}

// FailOn makes every call of method on name return err. Use an empty name
// with MethodList.
func (m *MemoryFolder) FailOn(method, name string, err error) {
	m.failures[Op{Folder: m.name, Method: method, Name: name}] = err
}

func (m *MemoryFolder) Content(name string) ([]byte, bool) {
	f, ok := m.files[name]
	if !ok {
		return nil, false
	}
	return f.content, true
}

func (m *MemoryFolder) Names() []string {
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ops returns the calls made against this folder only
func (m *MemoryFolder) Ops() []Op {
	var out []Op
	for _, op := range m.log.Ops() {
		if op.Folder == m.name {
			out = append(out, op)
		}
	}
	return out
}

func (m *MemoryFolder) Name() string {
	return m.name
}

func (m *MemoryFolder) List(ctx context.Context) ([]FileRecord, error) {
	if err := m.call(ctx, MethodList, ""); err != nil {
		return nil, err
	}

	records := make([]FileRecord, 0, len(m.files)+len(m.extra))
	for name, f := range m.files {
		records = append(records, FileRecord{
			Name:       name,
			Size:       int64(len(f.content)),
			ModifiedAt: f.modifiedAt,
		})
	}
	return append(records, m.extra...), nil
}

func (m *MemoryFolder) Download(ctx context.Context, name string) ([]byte, error) {
	if err := m.call(ctx, MethodDownload, name); err != nil {
		return nil, err
	}

	f, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", m.name, name, ErrNotFound)
	}
	return append([]byte(nil), f.content...), nil
}

func (m *MemoryFolder) Upload(ctx context.Context, name string, content []byte) error {
	if err := m.call(ctx, MethodUpload, name); err != nil {
		return err
	}

	m.files[name] = &memFile{
		content:    append([]byte(nil), content...),
		modifiedAt: time.Now(),
	}
	return nil
}

func (m *MemoryFolder) Delete(ctx context.Context, name string) error {
	if err := m.call(ctx, MethodDelete, name); err != nil {
		return err
	}

	if _, ok := m.files[name]; !ok {
		return fmt.Errorf("%s/%s: %w", m.name, name, ErrNotFound)
	}
	delete(m.files, name)
	return nil
}

func (m *MemoryFolder) call(ctx context.Context, method, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	op := Op{Folder: m.name, Method: method, Name: name}
	m.log.record(op)
	return m.failures[op]
}

var _ Folder = (*MemoryFolder)(nil)
