package main

import (
	"bufio"
	"iter"
	"os"
)

// lineSource returns an iterator over the lines of the given files,
// concatenated in order. With no files it reads standard input.
func lineSource(files []string) (iter.Seq[string], error) {
	if len(files) == 0 {
		return linesFromReader(os.Stdin), nil
	}

	// Open eagerly so missing files fail before any ingestion starts.
	handles := make([]*os.File, 0, len(files))
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			for _, h := range handles {
				h.Close()
			}
			return nil, err
		}
		handles = append(handles, f)
	}

	return func(yield func(string) bool) {
		for _, f := range handles {
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				if !yield(scanner.Text()) {
					closeAll(handles)
					return
				}
			}
		}
		closeAll(handles)
	}, nil
}

func linesFromReader(f *os.File) iter.Seq[string] {
	return func(yield func(string) bool) {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}
}

func closeAll(handles []*os.File) {
	for _, f := range handles {
		f.Close()
	}
}
