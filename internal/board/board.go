// Package board groups tasks into the three status columns shown by the UI.
package board

import "github.com/dori/devtasks/internal/model"

// NumColumns is the number of status columns on the board
const NumColumns = 3

// Board holds tasks partitioned by status. Order within each column is the
// order the tasks were given in.
type Board struct {
	Columns [NumColumns][]model.Task

	// Unknown collects tasks whose status is not one of the known
	// statuses, so they can be reported instead of disappearing.
	Unknown []model.Task
}

// Project partitions tasks into columns by status
func Project(tasks []model.Task) Board {
	var b Board
	for _, t := range tasks {
		if i := t.Status.Index(); i >= 0 {
			b.Columns[i] = append(b.Columns[i], t)
			continue
		}
		b.Unknown = append(b.Unknown, t)
	}
	return b
}

// Column returns the tasks for a status; unknown statuses yield nil
func (b Board) Column(status model.Status) []model.Task {
	i := status.Index()
	if i < 0 {
		return nil
	}
	return b.Columns[i]
}

// Len returns the number of tasks shown in the columns
func (b Board) Len() int {
	n := 0
	for _, col := range b.Columns {
		n += len(col)
	}
	return n
}

// Find returns the column and row of the task with the given id
func (b Board) Find(id int64) (col, row int, ok bool) {
	for c, tasks := range b.Columns {
		for r, t := range tasks {
			if t.ID == id {
				return c, r, true
			}
		}
	}
	return 0, 0, false
}
