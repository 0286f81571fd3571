package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/trezcool/shule/core/auth"
	"github.com/trezcool/shule/core/student"
)

func (cli *commandLine) info() error {
	info, err := cli.studentSvc.Info(context.Background())
	if err != nil {
		return err
	}
	if !info.Exists {
		fmt.Println("no roster data stored")
		return nil
	}
	fmt.Printf("students:     %d\n", info.Count)
	fmt.Printf("last updated: %s\n", info.LastUpdated)
	return nil
}

func (cli *commandLine) seed() error {
	roster, err := cli.studentSvc.Seed(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("roster reset to %d sample students\n", len(roster))
	return nil
}

// addStudent validates and appends a new roster record.
func (cli *commandLine) addStudent(name, email, grade, dob string, attendance int) error {
	data := student.NewStudent{
		Name:        name,
		Email:       email,
		Grade:       grade,
		DateOfBirth: dob,
		Attendance:  attendance,
	}
	if err := data.Validate(cli.validate); err != nil {
		return err
	}

	stu, err := cli.studentSvc.Create(context.Background(), data)
	if err != nil {
		return err
	}
	fmt.Printf("added student %q (id %d)\n", stu.Name, stu.ID)
	return nil
}

func (cli *commandLine) export(path string) error {
	roster, err := cli.studentSvc.Load(context.Background())
	if err != nil {
		return err
	}
	data, err := student.ExportSnapshot(roster)
	if err != nil {
		return err
	}

	if path == "" {
		path = student.ExportFilename(time.Now())
	}
	if err := ioutil.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("exported %d students to %s\n", len(roster), path)
	return nil
}

func (cli *commandLine) importData(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	roster, err := cli.studentSvc.ImportSnapshot(context.Background(), data)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d students from %s\n", len(roster), path)
	return nil
}

// clear wipes the roster and all sessions; the admin password must check out
// first.
func (cli *commandLine) clear(pwd string) error {
	ctx := context.Background()

	if _, _, err := cli.auth.AuthenticateAdmin(auth.AdminUsername, pwd); err != nil {
		return err
	}
	if err := cli.studentSvc.Clear(ctx); err != nil {
		return err
	}
	if err := cli.sessions.ClearAll(ctx); err != nil {
		return err
	}
	fmt.Println("all stored data cleared")
	return nil
}
