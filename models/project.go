package models

import "time"

type Project struct {
	ID          int        `db:"id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	Leader      string     `db:"leader"`
	Budget      float64    `db:"budget"`
	StartDate   time.Time  `db:"start_date"`
	EndDate     *time.Time `db:"end_date"`
	Completed   bool       `db:"completed"`
}
