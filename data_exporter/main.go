package main

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/template"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("loading dotenv failed: %s", err)
	}
}

func main() {
	var err error

	var db *sql.DB

	args := struct {
		Session            int    `name:"session" short:"s" help:"session number to export" required:""`
		Out                string `name:"out" short:"o" default:"session_{{.SessionNo}}.csv" help:"File to output to (templated)"`
		Format             string `name:"format" short:"f" enum:"csv,json" default:"csv" help:"Output format"`
		Flatten            bool   `name:"flatten" negatable:"" default:"true" help:"(CSV only) one row per variate instead of one row per batch"`
		ExportColumnTitles bool   `name:"export_column_titles" negatable:"" default:"true" help:"(CSV only) whether to include column titles"`
	}{}

	_ = kong.Parse(&args)

	dbConfig := mysql.Config{
		User:                 os.Getenv("DB_USER"),
		Passwd:               os.Getenv("DB_PASSWORD"),
		Addr:                 os.Getenv("DB_ADDRESS"),
		DBName:               os.Getenv("DB_NAME"),
		Collation:            "utf8mb4_general_ci",
		Net:                  "tcp",
		AllowNativePasswords: true,
		ParseTime:            true,
	}

	if db, err = sql.Open("mysql", dbConfig.FormatDSN()); err != nil {
		log.Fatalln(err)
	}

	defer db.Close()

	type Row struct {
		BatchOrder  int       `json:"batchOrder"`
		InsertTime  time.Time `json:"insertTime"`
		DrawnTime   time.Time `json:"drawnTime"`
		Dist        string    `json:"dist"`
		Params      string    `json:"params"`
		EngineState string    `json:"engineState"`
		Values      []float64 `json:"values"`
	}

	const selectQuery string = "SELECT batch_order, insert_time, drawn_time, dist, params, engine_state, `values` " +
		"FROM variates WHERE session_id=? ORDER BY batch_order"

	var sqlRows *sql.Rows
	if sqlRows, err = db.Query(selectQuery, args.Session); err != nil {
		log.Fatalf("Failed to fetch rows for session %d: %s", args.Session, err)
	}

	var rows []Row
	for i := 0; sqlRows.Next(); i++ {
		var row Row
		var valuesString string

		if err = sqlRows.Scan(
			&row.BatchOrder, &row.InsertTime, &row.DrawnTime,
			&row.Dist, &row.Params, &row.EngineState,
			&valuesString,
		); err != nil {
			log.Fatalf("error while reading row %d of session %d: %s", i, args.Session, err)
		}

		if err = json.Unmarshal([]byte(valuesString), &row.Values); err != nil {
			log.Fatalf("error while parsing values of row %d of session %d: %s", i, args.Session, err)
		}

		rows = append(rows, row)
	}

	db.Close()

	var outFileNameTemplate *template.Template
	if outFileNameTemplate, err = template.New("").Parse(args.Out); err != nil {
		log.Fatalf("error while creating the output filename template: %s", err)
	}

	outFileNameBuf := bytes.Buffer{}

	templateArguments := struct {
		SessionNo int
	}{
		SessionNo: args.Session,
	}

	if err = outFileNameTemplate.Execute(&outFileNameBuf, templateArguments); err != nil {
		log.Fatalf("error while executing the output filename template: %s", err)
	}

	outFileName := outFileNameBuf.String()

	var outFile *os.File
	if outFile, err = os.Create(outFileName); err != nil {
		log.Fatalf("error while creating the output file \"%s\": %s", outFileName, err)
	}

	defer outFile.Close()

	if args.Format == "json" {
		encoder := json.NewEncoder(outFile)
		encoder.SetIndent("", "  ")
		if err = encoder.Encode(rows); err != nil {
			log.Fatalf("error while writing JSON: %s", err)
		}
		return
	}

	csvWriter := csv.NewWriter(outFile)

	if args.ExportColumnTitles {
		columns := []string{
			"Batch Order",
			"Insert Time",
			"Drawn Time",
			"Distribution",
			"Parameters",
		}

		if args.Flatten {
			columns = append(columns, "Value")
		} else {
			columns = append(columns, "Values")
		}

		_ = csvWriter.Write(columns)
	}

	for _, row := range rows {
		prefix := []string{
			fmt.Sprintf("%d", row.BatchOrder),
			fmt.Sprintf("%d", row.InsertTime.Unix()),
			fmt.Sprintf("%d", row.DrawnTime.Unix()),
			row.Dist,
			row.Params,
		}

		if args.Flatten {
			for _, v := range row.Values {
				_ = csvWriter.Write(append(prefix[:len(prefix):len(prefix)], fmt.Sprintf("%.17g", v)))
			}
		} else {
			valueStrings := make([]string, 0, len(row.Values))
			for _, v := range row.Values {
				valueStrings = append(valueStrings, fmt.Sprintf("%.17g", v))
			}

			valuesJSON, _ := json.Marshal(valueStrings)
			_ = csvWriter.Write(append(prefix, string(valuesJSON)))
		}
	}

	csvWriter.Flush()
}
