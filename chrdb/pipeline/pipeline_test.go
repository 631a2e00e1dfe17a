package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/chrdb/chrdb/common"
	"github.com/ZanzyTHEbar/chrdb/chrdb/config"
	"github.com/ZanzyTHEbar/chrdb/chrdb/db"
	"github.com/ZanzyTHEbar/chrdb/chrdb/pack"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const miniUnicodeData = `0021;EXCLAMATION MARK;Po;0;ON;;;;;N;;;;;
0026;AMPERSAND;Po;0;ON;;;;;N;;;;;
0031;DIGIT ONE;Nd;0;EN;;1;1;1;N;;;;;
0041;LATIN CAPITAL LETTER A;Lu;0;L;;;;;N;;;;0061;
0061;LATIN SMALL LETTER A;Ll;0;L;;;;;N;;;0041;;0041
00C4;LATIN CAPITAL LETTER A WITH DIAERESIS;Lu;0;L;0041 0308;;;;N;LATIN CAPITAL LETTER A DIAERESIS;;;00E4;
AC00;<Hangul Syllable, First>;Lo;0;L;;;;;N;;;;;
AC03;<Hangul Syllable, Last>;Lo;0;L;;;;;N;;;;;
`

const miniBlocks = `# Blocks-13.0.0.txt
0000..007F; Basic Latin
0080..00FF; Latin-1 Supplement
AC00..D7AF; Hangul Syllables
`

const miniAges = `# DerivedAge-13.0.0.txt
0000..007E    ; 1.1 #  [127] <control-0000>..TILDE
00A0..00FF    ; 1.1 #  [96] NO-BREAK SPACE..LATIN SMALL LETTER Y WITH DIAERESIS
AC00..D7A3    ; 2.0 # [11172] HANGUL SYLLABLE GA..HANGUL SYLLABLE HIH
`

const miniEntities = `{
  "&amp": { "codepoints": [38], "characters": "&" },
  "&amp;": { "codepoints": [38], "characters": "&" },
  "&Auml;": { "codepoints": [196], "characters": "Ä" },
  "&excl;": { "codepoints": [33], "characters": "!" },
  "&NotEqualTilde;": { "codepoints": [8770, 824], "characters": "≂̸" }
}`

type PipelineTestSuite struct {
	suite.Suite
	server *httptest.Server
	files  map[string]string
	cfg    *config.Config
}

func (s *PipelineTestSuite) SetupTest() {
	s.files = map[string]string{
		"/ucd/Blocks.txt":       miniBlocks,
		"/ucd/DerivedAge.txt":   miniAges,
		"/ucd/UnicodeData.txt":  miniUnicodeData,
		"/whatwg/entities.json": miniEntities,
	}
	files := s.files
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))

	root := s.T().TempDir()
	s.cfg = &config.Config{
		Build: config.BuildConfig{
			CacheDir:  filepath.Join(root, "cache"),
			OutputDir: filepath.Join(root, "out"),
		},
		Sources: config.SourcesConfig{
			UCDBaseURL:      s.server.URL + "/ucd",
			EntitiesBaseURL: s.server.URL + "/whatwg",
		},
		Store:   config.StoreConfig{FileName: "chr.db"},
		Package: config.PackageConfig{FileName: "chr.db.zip"},
	}
}

func (s *PipelineTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *PipelineTestSuite) builder(opts ...Option) *Builder {
	opts = append([]Option{WithHTTPClient(s.server.Client())}, opts...)
	return New(s.cfg, zerolog.Nop(), opts...)
}

func (s *PipelineTestSuite) TestEndToEnd() {
	report, err := s.builder().Run(context.Background())
	s.Require().NoError(err)

	s.NotEmpty(report.BuildID)
	s.Equal(4, report.Downloaded)
	s.Equal(6+4, report.Records)
	s.Equal(10, report.Inserted)
	s.Equal(3, report.Blocks.Rows)
	s.Equal(3, report.Ages.Rows)
	s.Equal(5, report.Entities.Entities)
	s.Equal(1, report.Entities.MultiCodeDrop)
	s.Equal(4, report.Entities.Matched) // &amp and &amp; both hit U+0026
	s.FileExists(report.StorePath)
	s.FileExists(report.ArchivePath)

	stages := report.Metrics.Stages()
	s.Require().Len(stages, 7)
	s.Equal(common.StageFetch, stages[0].Stage)
	s.Equal(common.StagePackage, stages[6].Stage)
	s.Equal(int64(7), report.Metrics.GetMetrics()["successful_ops"])

	// The archive holds a usable store.
	unpacked, err := pack.Unpack(report.ArchivePath, s.T().TempDir())
	s.Require().NoError(err)
	s.Equal("chr.db", filepath.Base(unpacked))

	store, err := db.Open(unpacked)
	s.Require().NoError(err)
	defer store.Close()

	got, err := store.LookupCodepoints(context.Background(), []uint32{0x26, 0xC4, 0xAC02})
	s.Require().NoError(err)
	s.Require().Len(got, 3)

	amp := got[0]
	s.Equal("AMPERSAND", amp.Name)
	s.Equal("Basic Latin", amp.Block)
	s.Equal("1.1", amp.Age)
	s.Require().NotNil(amp.HTMLEntity)
	s.Equal("&amp;", *amp.HTMLEntity)

	auml := got[1]
	s.Equal("Latin-1 Supplement", auml.Block)
	s.Require().NotNil(auml.DecompositionMapping)
	s.Equal("65 776", *auml.DecompositionMapping)
	s.Require().NotNil(auml.HTMLEntity)
	s.Equal("&Auml;", *auml.HTMLEntity)

	hangul := got[2]
	s.Equal("Hangul Syllable", hangul.Name)
	s.Equal("Hangul Syllables", hangul.Block)
	s.Equal("2.0", hangul.Age)
	s.Nil(hangul.HTMLEntity)
}

func (s *PipelineTestSuite) TestRebuildIsIdempotent() {
	first, err := s.builder().Run(context.Background())
	s.Require().NoError(err)

	second, err := s.builder().Run(context.Background())
	s.Require().NoError(err)
	s.Zero(second.Downloaded)
	s.Zero(second.Inserted)
	s.NotEqual(first.BuildID, second.BuildID)

	store, err := db.Open(second.StorePath)
	s.Require().NoError(err)
	defer store.Close()
	count, err := store.Count()
	s.Require().NoError(err)
	s.Equal(first.Inserted, count)
}

func (s *PipelineTestSuite) TestMissingSource() {
	delete(s.files, "/whatwg/entities.json")

	_, err := s.builder().Run(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, common.ErrSourceUnavailable))

	var se *common.StageError
	s.Require().True(errors.As(err, &se))
	s.Equal(common.StageFetch, se.Stage)
	s.Equal("entities.json", se.File)
	s.NoFileExists(s.cfg.StorePath())
}

func (s *PipelineTestSuite) TestMalformedUnicodeData() {
	s.files["/ucd/UnicodeData.txt"] = miniUnicodeData + "0042;TRUNCATED;Lu\n"

	_, err := s.builder().Run(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, common.ErrMalformedRecord))

	var se *common.StageError
	s.Require().True(errors.As(err, &se))
	s.Equal(common.StageParse, se.Stage)
	s.Equal(9, se.Line)
	s.Contains(se.File, "UnicodeData.txt")
	s.NoFileExists(s.cfg.StorePath())
}

func (s *PipelineTestSuite) TestStoreFailure() {
	mock := db.NewMockCharacterStore()
	mock.FailOn = 0x41
	opener := func(string, zerolog.Logger) (db.CharacterStore, error) { return mock, nil }

	report, err := s.builder(WithStoreOpener(opener)).Run(context.Background())
	s.Require().Error(err)
	s.True(errors.Is(err, common.ErrStore))

	var se *common.StageError
	s.Require().True(errors.As(err, &se))
	s.Equal(common.StageStore, se.Stage)
	s.True(mock.Closed())

	stages := report.Metrics.Stages()
	s.Require().Len(stages, 6)
	s.False(stages[5].Success)
	s.NoFileExists(s.cfg.ArchivePath())
}

func (s *PipelineTestSuite) TestStagePanicIsRecovered() {
	opener := func(string, zerolog.Logger) (db.CharacterStore, error) { panic("boom") }

	_, err := s.builder(WithStoreOpener(opener)).Run(context.Background())
	s.Require().Error(err)
	s.Contains(err.Error(), "boom")

	var se *common.StageError
	s.Require().True(errors.As(err, &se))
	s.Equal(common.StageStore, se.Stage)
}

func (s *PipelineTestSuite) TestCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.builder().Run(ctx)
	s.Require().Error(err)
	s.True(errors.Is(err, context.Canceled))
}

func (s *PipelineTestSuite) TestFetchOnly() {
	n, err := s.builder().Fetch(context.Background())
	s.Require().NoError(err)
	s.Equal(4, n)

	for _, src := range s.builder().Sources() {
		s.FileExists(filepath.Join(s.cfg.Build.CacheDir, src.Name))
	}
	s.NoFileExists(s.cfg.StorePath())
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func TestRunUsesConfig(t *testing.T) {
	cache := t.TempDir()
	for name, body := range map[string]string{
		"Blocks.txt":      miniBlocks,
		"DerivedAge.txt":  miniAges,
		"UnicodeData.txt": miniUnicodeData,
		"entities.json":   miniEntities,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(cache, name), []byte(body), 0o644))
	}

	out := filepath.Join(t.TempDir(), "dist")
	cfg := &config.Config{
		Build: config.BuildConfig{CacheDir: cache, OutputDir: out},
		// Never contacted: every source is already cached.
		Sources: config.SourcesConfig{UCDBaseURL: "http://127.0.0.1:1/ucd", EntitiesBaseURL: "http://127.0.0.1:1"},
		Store:   config.StoreConfig{FileName: "unicode.db"},
		Package: config.PackageConfig{FileName: "unicode.zip"},
	}

	require.NoError(t, Run(context.Background(), cfg, zerolog.Nop()))
	assert.FileExists(t, filepath.Join(out, "unicode.db"))
	assert.FileExists(t, filepath.Join(out, "unicode.zip"))
}
