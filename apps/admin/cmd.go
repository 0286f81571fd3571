package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/auth"
	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/core/student"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	db         *sql.DB
	studentSvc *student.Service
	sessions   *session.Store
	auth       *auth.Authenticator
	validate   *validator.Validate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  info - show roster slot status")
	fmt.Println("  seed - reset the roster to the sample data")
	fmt.Println("  addstudent -name NAME -email EMAIL -grade GRADE -dob YYYY-MM-DD [-attendance N] - add a student")
	fmt.Println("  export [-file PATH] - write the roster snapshot to a file")
	fmt.Println("  import -file PATH - replace the roster with a snapshot file")
	fmt.Println("  clear - wipe the roster and all sessions (admin password prompted)")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (postgres backend only)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addStudentCmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
	addStudentName := addStudentCmd.String("name", "", "The student's full name.")
	addStudentEmail := addStudentCmd.String("email", "", "The student's email address.")
	addStudentGrade := addStudentCmd.String("grade", "", "One of: 9th Grade, 10th Grade, 11th Grade, 12th Grade.")
	addStudentDOB := addStudentCmd.String("dob", "", "The student's date of birth (YYYY-MM-DD); used as their login credential.")
	addStudentAttendance := addStudentCmd.Int("attendance", 100, "Attendance percentage (0-100).")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportFile := exportCmd.String("file", "", "Destination path. Defaults to the dated snapshot filename.")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "The snapshot file to import.")

	switch args[1] {
	case "info":
		return cli.info()
	case "seed":
		return cli.seed()
	case "addstudent":
		if err := addStudentCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addStudentName == "" || *addStudentEmail == "" || *addStudentGrade == "" || *addStudentDOB == "" {
			addStudentCmd.Usage()
			return errHelp
		}
		return cli.addStudent(*addStudentName, *addStudentEmail, *addStudentGrade, *addStudentDOB, *addStudentAttendance)
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.export(*exportFile)
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importData(*importFile)
	case "clear":
		fmt.Print("Enter admin password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.clear(string(pwd))
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
