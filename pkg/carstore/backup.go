package carstore

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/0xRadioAc7iv/go-carstore/core"
	"github.com/0xRadioAc7iv/go-carstore/internal/utils"
)

// BackupFiles lists, in archive order, the file names Backup may write.
func BackupFiles() []string {
	var names []string
	for _, table := range []string{core.ModelsTableName, core.CarsTableName, core.SalesTableName} {
		names = append(names, core.DataFileName(table), core.IndexFileName(table))
	}
	return names
}

// Backup writes a zstd-compressed tar archive of every table file to w.
// Files that do not exist yet are left out.
func (s *Service) Backup(w io.Writer) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	tw := tar.NewWriter(enc)
	written := 0
	for _, name := range BackupFiles() {
		ok, err := s.backupFile(tw, name)
		if err != nil {
			enc.Close()
			return fmt.Errorf("backup %s: %w", name, err)
		}
		if ok {
			written++
		}
	}

	if err := tw.Close(); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	s.log.Info("backup completed", "files", written)
	return nil
}

func (s *Service) backupFile(tw *tar.Writer, name string) (bool, error) {
	f, err := s.cfg.FS.OpenFile(filepath.Join(s.cfg.DirectoryPath, name), os.O_RDONLY, 0644)
	if err != nil {
		if utils.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}

	hdr := &tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return false, err
	}
	if _, err := io.CopyN(tw, f, info.Size()); err != nil {
		return false, err
	}
	return true, nil
}
