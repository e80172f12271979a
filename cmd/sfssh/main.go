// sfssh is the interactive shell for a SimpleFS disk image.
//
// Usage: sfssh <diskfile> <nblocks>
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xandout/gorpl"
	"github.com/xandout/gorpl/action"

	"github.com/simple-fs/simplefs/common"
	"github.com/simple-fs/simplefs/disk"
	"github.com/simple-fs/simplefs/fs"
)

type handler func(args ...interface{}) (interface{}, error)

func errorify(cb handler) handler {
	return func(args ...interface{}) (interface{}, error) {
		val, err := cb(args...)
		if err != nil {
			fmt.Printf("Error: %s\n", err)
		}
		return val, err
	}
}

func parseInum(arg interface{}) (common.Inum, error) {
	n, err := strconv.ParseUint(arg.(string), 10, 32)
	if err != nil {
		return 0, errors.New("inode number should be an integer")
	}
	return n, nil
}

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <diskfile> <nblocks>\n", os.Args[0])
		os.Exit(1)
	}
	blocks, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil || blocks == 0 {
		fmt.Fprintf(os.Stderr, "nblocks should be a positive integer\n")
		os.Exit(1)
	}
	d, err := disk.Open(os.Args[1], blocks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	fsys := &fs.FileSystem{}

	quit := func() {
		fsys.Unmount()
		d.Close()
		os.Exit(0)
	}

	format := action.New("format", errorify(func(args ...interface{}) (interface{}, error) {
		if len(args) != 0 {
			return nil, errors.New("usage: format")
		}
		if err := fs.Format(d); err != nil {
			return nil, err
		}
		fmt.Println("disk formatted.")
		return nil, nil
	}))
	mount := action.New("mount", errorify(func(args ...interface{}) (interface{}, error) {
		if len(args) != 0 {
			return nil, errors.New("usage: mount")
		}
		if err := fs.Mount(fsys, d); err != nil {
			return nil, err
		}
		fmt.Println("disk mounted.")
		return nil, nil
	}))
	debug := action.New("debug", errorify(func(args ...interface{}) (interface{}, error) {
		if len(args) != 0 {
			return nil, errors.New("usage: debug")
		}
		return nil, fs.Debug(d)
	}))
	create := action.New("create", errorify(func(args ...interface{}) (interface{}, error) {
		if len(args) != 0 {
			return nil, errors.New("usage: create")
		}
		n, err := fsys.Create()
		if err != nil {
			return nil, err
		}
		fmt.Printf("created inode %d.\n", n)
		return n, nil
	}))
	remove := action.New("remove", errorify(func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, errors.New("usage: remove <inode>")
		}
		n, err := parseInum(args[0])
		if err != nil {
			return nil, err
		}
		if err := fsys.Remove(n); err != nil {
			return nil, err
		}
		fmt.Printf("removed inode %d.\n", n)
		return nil, nil
	}))
	stat := action.New("stat", errorify(func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, errors.New("usage: stat <inode>")
		}
		n, err := parseInum(args[0])
		if err != nil {
			return nil, err
		}
		size := fsys.Stat(n)
		if size < 0 {
			return nil, fmt.Errorf("inode %d is not valid", n)
		}
		fmt.Printf("inode %d has size %d bytes.\n", n, size)
		return size, nil
	}))
	cat := action.New("cat", errorify(func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, errors.New("usage: cat <inode>")
		}
		n, err := parseInum(args[0])
		if err != nil {
			return nil, err
		}
		return nil, copyout(fsys, n, os.Stdout)
	}))
	copyinAct := action.New("copyin", errorify(func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, errors.New("usage: copyin <file> <inode>")
		}
		n, err := parseInum(args[1])
		if err != nil {
			return nil, err
		}
		return nil, copyin(fsys, args[0].(string), n)
	}))
	copyoutAct := action.New("copyout", errorify(func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, errors.New("usage: copyout <inode> <file>")
		}
		n, err := parseInum(args[0])
		if err != nil {
			return nil, err
		}
		f, err := os.Create(args[1].(string))
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return nil, copyout(fsys, n, f)
	}))
	help := action.New("help", errorify(func(args ...interface{}) (interface{}, error) {
		fmt.Print(`Commands are:
    format
    mount
    debug
    create
    remove  <inode>
    stat    <inode>
    cat     <inode>
    copyin  <file> <inode>
    copyout <inode> <file>
    help
    quit
    exit
`)
		return nil, nil
	}))
	exit := action.New("exit", errorify(func(args ...interface{}) (interface{}, error) {
		quit()
		return nil, nil
	}))
	quitAct := action.New("quit", errorify(func(args ...interface{}) (interface{}, error) {
		quit()
		return nil, nil
	}))

	repl := gorpl.New(";")
	repl.AddAction(*format)
	repl.AddAction(*mount)
	repl.AddAction(*debug)
	repl.AddAction(*create)
	repl.AddAction(*remove)
	repl.AddAction(*stat)
	repl.AddAction(*cat)
	repl.AddAction(*copyinAct)
	repl.AddAction(*copyoutAct)
	repl.AddAction(*help)
	repl.AddAction(*exit)
	repl.AddAction(*quitAct)
	repl.Start()
}

// copyin copies a host file into inode n, growing the file from
// offset 0. A short write means the disk filled up.
func copyin(fsys *fs.FileSystem, path string, n common.Inum) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, common.BlockSize)
	var off uint64
	for {
		r, err := f.Read(buf)
		if r > 0 {
			w, werr := fsys.WriteAt(n, buf[:r], off)
			off += uint64(w)
			if werr != nil {
				return werr
			}
			if w < r {
				fmt.Printf("%d bytes copied; disk is full.\n", off)
				return nil
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	fmt.Printf("%d bytes copied.\n", off)
	return nil
}

// copyout streams the contents of inode n to w.
func copyout(fsys *fs.FileSystem, n common.Inum, w io.Writer) error {
	size := fsys.Stat(n)
	if size < 0 {
		return fmt.Errorf("inode %d is not valid", n)
	}
	buf := make([]byte, common.BlockSize)
	for off := uint64(0); off < uint64(size); {
		r, err := fsys.ReadAt(n, buf, off)
		if err != nil {
			return err
		}
		if r == 0 {
			break
		}
		if _, err := w.Write(buf[:r]); err != nil {
			return err
		}
		off += uint64(r)
	}
	return nil
}
