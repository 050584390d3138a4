package variant

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bluegreen/internal/failflag"
	"github.com/mesh-intelligence/bluegreen/internal/jsonfile"
	"github.com/mesh-intelligence/bluegreen/internal/sqlite"
	"github.com/mesh-intelligence/bluegreen/pkg/types"
)

// recorder is an Observer that keeps the last values it saw.
type recorder struct {
	mu     sync.Mutex
	state  types.State
	forced bool
}

func (r *recorder) ObserveState(st types.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = st
}

func (r *recorder) ObserveForced(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forced = on
}

type fixture struct {
	dir      string
	store    *jsonfile.Store
	sentinel string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	s := jsonfile.NewStore(nil)
	require.NoError(t, s.Attach(types.Config{Backend: types.BackendFile, DataDir: dir}))
	t.Cleanup(func() { s.Detach() })
	return &fixture{dir: dir, store: s, sentinel: filepath.Join(dir, "force_bad")}
}

func (f *fixture) service(t *testing.T, v types.Variant, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(v, f.store, failflag.New(false, f.sentinel), opts...)
	require.NoError(t, err)
	return svc
}

func (f *fixture) documentBytes(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, jsonfile.FileName))
	require.NoError(t, err)
	return data
}

func TestNewServiceRejectsInvalidVariant(t *testing.T) {
	f := newFixture(t)
	_, err := NewService(types.Variant{ID: "", SchemaCeiling: 1}, f.store, failflag.New(false, f.sentinel))
	assert.ErrorIs(t, err, types.ErrVariantIDEmpty)
}

func TestServe_CountsEveryCall(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Write(types.State{SchemaVersion: 1, RequestCount: 0, LastWriter: "init"}))
	blue := f.service(t, types.Blue)

	for i := 1; i <= 3; i++ {
		st, err := blue.Serve()
		require.NoError(t, err)
		assert.Equal(t, int64(i), st.RequestCount)
		assert.Equal(t, "blue-v1", st.LastWriter)
	}

	st, err := blue.State()
	require.NoError(t, err)
	assert.Equal(t, types.State{SchemaVersion: 1, RequestCount: 3, LastWriter: "blue-v1"}, st)
}

func TestServe_LastWriterFollowsLastCaller(t *testing.T) {
	f := newFixture(t)
	blue := f.service(t, types.Blue)
	green := f.service(t, types.Green)

	_, err := blue.Serve()
	require.NoError(t, err)
	st, err := green.Serve()
	require.NoError(t, err)

	assert.Equal(t, int64(2), st.RequestCount)
	assert.Equal(t, "green-v2", st.LastWriter)
}

func TestServe_ConcurrentNoLostIncrement(t *testing.T) {
	f := newFixture(t)
	blue := f.service(t, types.Blue)
	require.NoError(t, blue.Init())

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := blue.Serve()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st, err := blue.State()
	require.NoError(t, err)
	assert.Equal(t, int64(n), st.RequestCount)
}

func TestServe_UnhealthyHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	blue := f.service(t, types.Blue)
	require.NoError(t, blue.Init())

	_, err := blue.SetForcedFailure(true)
	require.NoError(t, err)
	before := f.documentBytes(t)

	_, err = blue.Serve()
	assert.ErrorIs(t, err, types.ErrForcedFailure)
	assert.Equal(t, before, f.documentBytes(t))

	_, err = blue.SetForcedFailure(false)
	require.NoError(t, err)
	require.NoError(t, f.store.Write(types.State{SchemaVersion: 2, RequestCount: 5, LastWriter: "green-v2"}))
	before = f.documentBytes(t)

	_, err = blue.Serve()
	assert.ErrorIs(t, err, types.ErrSchemaIncompatible)
	assert.Equal(t, before, f.documentBytes(t))
}

func TestCheck_HealthFollowsConditions(t *testing.T) {
	f := newFixture(t)
	blue := f.service(t, types.Blue)

	_, err := blue.Check()
	assert.NoError(t, err)

	_, err = blue.SetForcedFailure(true)
	require.NoError(t, err)
	_, err = blue.Check()
	assert.ErrorIs(t, err, types.ErrForcedFailure)

	_, err = blue.SetForcedFailure(false)
	require.NoError(t, err)
	_, err = blue.Check()
	assert.NoError(t, err)

	require.NoError(t, f.store.Write(types.State{SchemaVersion: 2, RequestCount: 0, LastWriter: "green-v2"}))
	st, err := blue.Check()
	assert.ErrorIs(t, err, types.ErrSchemaIncompatible)
	assert.Equal(t, 2, st.SchemaVersion)

	require.NoError(t, f.store.Write(types.State{SchemaVersion: 1, RequestCount: 0, LastWriter: "green-v2"}))
	_, err = blue.Check()
	assert.NoError(t, err)
}

func TestCheck_StaticForcedFailure(t *testing.T) {
	f := newFixture(t)
	svc, err := NewService(types.Blue, f.store, failflag.New(true, f.sentinel))
	require.NoError(t, err)

	_, err = svc.Check()
	assert.ErrorIs(t, err, types.ErrForcedFailure)

	on, err := svc.SetForcedFailure(false)
	require.NoError(t, err)
	assert.True(t, on)
}

func TestCheck_DoesNotWrite(t *testing.T) {
	f := newFixture(t)
	blue := f.service(t, types.Blue)
	require.NoError(t, blue.Init())
	before := f.documentBytes(t)

	for i := 0; i < 5; i++ {
		_, err := blue.Check()
		require.NoError(t, err)
	}
	assert.Equal(t, before, f.documentBytes(t))
}

func TestCheck_StorageError(t *testing.T) {
	f := newFixture(t)
	blue := f.service(t, types.Blue)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, jsonfile.FileName), []byte("not json"), 0o644))

	_, err := blue.Check()
	assert.ErrorIs(t, err, types.ErrStorage)

	_, err = blue.Serve()
	assert.ErrorIs(t, err, types.ErrStorage)
}

func TestMigrateSchema(t *testing.T) {
	f := newFixture(t)
	green := f.service(t, types.Green)
	require.NoError(t, f.store.Write(types.State{SchemaVersion: 1, RequestCount: 7, LastWriter: "blue-v1"}))

	st, err := green.MigrateSchema(2)
	require.NoError(t, err)
	assert.Equal(t, types.State{SchemaVersion: 2, RequestCount: 7, LastWriter: "green-v2"}, st)

	// Rolling the document back is allowed within the ceiling.
	st, err = green.MigrateSchema(1)
	require.NoError(t, err)
	assert.Equal(t, 1, st.SchemaVersion)
	assert.Equal(t, int64(7), st.RequestCount)
}

func TestMigrateSchema_AboveCeilingLeavesDocument(t *testing.T) {
	f := newFixture(t)
	blue := f.service(t, types.Blue)
	require.NoError(t, f.store.Write(types.State{SchemaVersion: 1, RequestCount: 3, LastWriter: "blue-v1"}))
	before := f.documentBytes(t)

	_, err := blue.MigrateSchema(2)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrUnsupportedSchema)

	var ue *types.UnsupportedSchemaError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 1, ue.Max)
	assert.Equal(t, 2, ue.Target)

	assert.Equal(t, before, f.documentBytes(t))
}

func TestMigrateSchema_InvalidTarget(t *testing.T) {
	f := newFixture(t)
	green := f.service(t, types.Green)

	_, err := green.MigrateSchema(0)
	assert.ErrorIs(t, err, types.ErrInvalidSchema)
	_, err = green.MigrateSchema(-3)
	assert.ErrorIs(t, err, types.ErrInvalidSchema)
}

func TestMigrateThenRollback(t *testing.T) {
	f := newFixture(t)
	blue := f.service(t, types.Blue)
	green := f.service(t, types.Green)

	_, err := blue.Serve()
	require.NoError(t, err)

	_, err = green.MigrateSchema(2)
	require.NoError(t, err)

	// Blue refuses to serve a document it cannot interpret.
	_, err = blue.Check()
	assert.ErrorIs(t, err, types.ErrSchemaIncompatible)
	_, err = blue.Serve()
	assert.ErrorIs(t, err, types.ErrSchemaIncompatible)

	// Green rolls the document back, blue is healthy again.
	_, err = green.MigrateSchema(1)
	require.NoError(t, err)
	st, err := blue.Serve()
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.RequestCount)
}

func TestObserverSeesValues(t *testing.T) {
	f := newFixture(t)
	rec := &recorder{}
	blue := f.service(t, types.Blue, WithObserver(rec))

	_, err := blue.Serve()
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.state.RequestCount)

	_, err = blue.SetForcedFailure(true)
	require.NoError(t, err)
	assert.True(t, rec.forced)
}

func TestServiceWithSQLiteBackend(t *testing.T) {
	dir := t.TempDir()
	b := sqlite.NewBackend(nil)
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b.Detach()

	green, err := NewService(types.Green, b, failflag.New(false, filepath.Join(dir, "force_bad")))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		_, err := green.Serve()
		require.NoError(t, err)
	}
	st, err := green.MigrateSchema(2)
	require.NoError(t, err)
	assert.Equal(t, types.State{SchemaVersion: 2, RequestCount: 4, LastWriter: "green-v2"}, st)
}
