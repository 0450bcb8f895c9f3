// Package cli is the terminal front-end for the appointment listing. It drives
// a listing.View from a line-oriented REPL.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jwalitptl/clinic-dashboard/internal/listing"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

const helpText = `Commands:
  list              reload the current page
  next | prev       move one page
  page N            go to page N
  size N            rows per page
  search TEXT       filter by patient name or email (empty clears)
  status S          pending, confirmed, cancelled or "all"
  view ID           show appointment details
  close             close the details
  edit ID           print the edit location
  delete ID         delete an appointment
  help              this text
  quit | exit       leave`

type Options struct {
	// Interactive is false when stdin is not a terminal; deletes are then
	// refused unless AssumeYes is set.
	Interactive bool
	AssumeYes   bool
}

type App struct {
	view   *listing.View
	reader *bufio.Reader
	out    io.Writer
	opts   Options
}

func NewApp(view *listing.View, in io.Reader, out io.Writer, opts Options) *App {
	return &App{
		view:   view,
		reader: bufio.NewReader(in),
		out:    out,
		opts:   opts,
	}
}

// Run loads the first page and reads commands until EOF, quit or ctx ends.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Appointments (type 'help' for commands)")
	s, err := a.view.EnsureLoaded(ctx)
	a.render(s, err)

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(a.out, "appointments> ")
		line, err := a.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.out)
				return nil
			}
			return err
		}
		if quit := a.Execute(ctx, line); quit {
			return nil
		}
	}
}

func (a *App) readLine() (string, error) {
	line, err := a.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Execute runs one command line and reports whether the user asked to quit.
func (a *App) Execute(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "":
	case "help", "?":
		fmt.Fprintln(a.out, helpText)
	case "quit", "exit":
		fmt.Fprintln(a.out, "Bye!")
		return true
	case "list", "l":
		s, err := a.view.Refresh(ctx)
		a.render(s, err)
	case "next", "n":
		a.apply(ctx, listing.NextPage())
	case "prev", "p":
		a.apply(ctx, listing.PreviousPage())
	case "page":
		if n, ok := a.number(arg, "page N"); ok {
			a.apply(ctx, listing.Page(n))
		}
	case "size":
		if n, ok := a.number(arg, "size N"); ok {
			a.apply(ctx, listing.PageSize(n))
		}
	case "search":
		a.apply(ctx, listing.Search(arg))
	case "status":
		if strings.EqualFold(arg, "all") {
			arg = ""
		}
		a.apply(ctx, listing.Status(model.AppointmentStatus(strings.ToLower(arg))))
	case "view", "show":
		d, err := a.view.Open(arg)
		if err != nil {
			a.printError(err)
			return false
		}
		a.renderDetail(d)
	case "close":
		a.view.CloseModal()
	case "edit":
		dest, err := a.view.Edit(arg)
		a.view.TakeNotice()
		if err != nil {
			a.printError(err)
			return false
		}
		fmt.Fprintf(a.out, "Edit at %s\n", dest)
	case "delete", "rm":
		s, err := a.view.Delete(ctx, arg, listing.ConfirmFunc(a.confirm))
		if errors.Is(err, listing.ErrNotConfirmed) {
			fmt.Fprintln(a.out, "Cancelled.")
			return false
		}
		a.render(s, err)
	default:
		fmt.Fprintf(a.out, "Unknown command: %s\n", cmd)
	}
	return false
}

func (a *App) apply(ctx context.Context, m listing.Mutation) {
	s, err := a.view.Apply(ctx, m)
	a.render(s, err)
}

func (a *App) number(arg, usage string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(a.out, "Usage: %s\n", usage)
		return 0, false
	}
	return n, true
}

func (a *App) confirm(_ context.Context, prompt string) (bool, error) {
	if a.opts.AssumeYes {
		return true, nil
	}
	if !a.opts.Interactive {
		fmt.Fprintln(a.out, "Refusing to delete without a terminal; rerun with -yes.")
		return false, nil
	}
	fmt.Fprintf(a.out, "%s [y/N] ", prompt)
	answer, err := a.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (a *App) printError(err error) {
	fmt.Fprintf(a.out, "Error: %s\n", apperrors.UserMessage(err, err.Error()))
}

// render prints the notice, then the table and summary. The view already
// turned err into a notice or error text, so it is only used for superseded
// fetches.
func (a *App) render(s listing.Snapshot, err error) {
	if errors.Is(err, listing.ErrSuperseded) {
		s = a.view.Snapshot()
	}
	if n := a.view.TakeNotice(); n != nil {
		prefix := "OK"
		if n.Kind == listing.NoticeError {
			prefix = "Error"
		}
		fmt.Fprintf(a.out, "%s: %s\n", prefix, n.Message)
	}
	if s.Error != "" {
		fmt.Fprintln(a.out, s.Error)
		return
	}

	if s.Empty() {
		fmt.Fprintln(a.out, "No appointments found.")
	} else {
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPATIENT\tEMAIL\tDATE\tTIME\tSTATUS")
		for _, appt := range s.Appointments {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				appt.ID, appt.PatientName(), appt.Email, appt.Date.Format(), appt.Time,
				listing.StatusBadge(appt.Status).Label)
		}
		tw.Flush()
	}

	filters := "all statuses"
	if s.Filters.Status != "" {
		filters = string(s.Filters.Status)
	}
	if s.Filters.Search != "" {
		filters += fmt.Sprintf(", search %q", s.Filters.Search)
	}
	fmt.Fprintf(a.out, "%s (page %d, %d per page, %s)\n",
		s.Summary.String(), s.Pagination.Current, s.Pagination.PageSize, filters)
}

func (a *App) renderDetail(d listing.Detail) {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Patient\t%s\n", d.PatientName)
	fmt.Fprintf(tw, "Status\t%s\n", d.Status.Label)
	fmt.Fprintf(tw, "Email\t%s\n", d.Email)
	fmt.Fprintf(tw, "Contact\t%s\n", d.Contact)
	fmt.Fprintf(tw, "Date of birth\t%s\n", d.DateOfBirth)
	fmt.Fprintf(tw, "Appointment\t%s %s\n", d.Date, d.Time)
	fmt.Fprintf(tw, "Created by\t%s\n", d.CreatedBy)
	tw.Flush()
}
