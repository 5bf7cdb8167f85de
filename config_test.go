package dirtab_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/calvinalkan/dirtab"
	"github.com/calvinalkan/dirtab/internal/fs"
)

func Test_Open_Fails_When_Dir_Missing_From_Config(t *testing.T) {
	t.Parallel()

	_, err := dirtab.Open(dirtab.Config[doc]{Codec: dirtab.JSON[doc]{}})
	if !errors.Is(err, dirtab.ErrBuild) {
		t.Fatalf("err = %v, want ErrBuild", err)
	}
}

func Test_Open_Fails_When_Codec_Missing_From_Config(t *testing.T) {
	t.Parallel()

	_, err := dirtab.Open(dirtab.Config[doc]{Dir: t.TempDir()})
	if !errors.Is(err, dirtab.ErrBuild) {
		t.Fatalf("err = %v, want ErrBuild", err)
	}
}

func Test_Open_Fails_When_ReadOnly_Combined_With_CreateDir(t *testing.T) {
	t.Parallel()

	_, err := dirtab.Open(dirtab.Config[doc]{
		Dir:       filepath.Join(t.TempDir(), "table"),
		Codec:     dirtab.JSON[doc]{},
		ReadOnly:  true,
		CreateDir: true,
	})
	if !errors.Is(err, dirtab.ErrBuild) {
		t.Fatalf("err = %v, want ErrBuild", err)
	}
}

func Test_Open_Fails_When_Dir_Does_Not_Exist_And_CreateDir_Unset(t *testing.T) {
	t.Parallel()

	_, err := dirtab.Open(dirtab.Config[doc]{
		Dir:   filepath.Join(t.TempDir(), "nope"),
		Codec: dirtab.JSON[doc]{},
	})
	if !errors.Is(err, dirtab.ErrBuild) {
		t.Fatalf("err = %v, want ErrBuild", err)
	}
}

func Test_Open_Creates_Dir_When_CreateDir_Set(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "deep", "table")

	table, err := dirtab.Open(dirtab.Config[doc]{
		Dir:       dir,
		Codec:     dirtab.JSON[doc]{},
		CreateDir: true,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat created dir: %v", err)
	}

	if !info.IsDir() {
		t.Fatal("created path is not a directory")
	}

	err = table.Put("alpha", doc{N: 1})
	if err != nil {
		t.Fatalf("put into created dir: %v", err)
	}

	got, err := table.Get("alpha")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.N != 1 {
		t.Fatalf("n = %d, want 1", got.N)
	}
}

func Test_Open_Rejects_Plain_File_As_Dir_Regardless_Of_CreateDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "occupied")

	err := os.WriteFile(path, []byte("a plain file"), 0o644)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, create := range []bool{false, true} {
		_, err := dirtab.Open(dirtab.Config[doc]{
			Dir:       path,
			Codec:     dirtab.JSON[doc]{},
			CreateDir: create,
		})
		if !errors.Is(err, dirtab.ErrBuild) {
			t.Fatalf("CreateDir=%v: err = %v, want ErrBuild", create, err)
		}
	}
}

func Test_Open_Surfaces_Stat_Failure(t *testing.T) {
	t.Parallel()

	injected := errors.New("injected stat failure")

	_, err := dirtab.Open(dirtab.Config[doc]{
		Dir:   t.TempDir(),
		Codec: dirtab.JSON[doc]{},
		FS: &fs.Stub{
			FS:      fs.NewReal(),
			StatErr: func(string) error { return injected },
		},
	})
	if !errors.Is(err, injected) {
		t.Fatalf("err = %v, want injected stat failure", err)
	}
}

func Test_Open_Surfaces_Mkdir_Failure(t *testing.T) {
	t.Parallel()

	injected := errors.New("injected mkdir failure")

	_, err := dirtab.Open(dirtab.Config[doc]{
		Dir:       filepath.Join(t.TempDir(), "table"),
		Codec:     dirtab.JSON[doc]{},
		CreateDir: true,
		FS: &fs.Stub{
			FS:          fs.NewReal(),
			MkdirAllErr: func(string) error { return injected },
		},
	})
	if !errors.Is(err, injected) {
		t.Fatalf("err = %v, want injected mkdir failure", err)
	}
}
