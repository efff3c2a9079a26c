// ABOUTME: Database schema definitions and migrations
// ABOUTME: Handles SQLite table creation and initialization
package db

import (
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	customer_name TEXT NOT NULL,
	customer_type TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT NOT NULL,
	address TEXT,
	service_details TEXT,
	problem_description TEXT,
	priority TEXT NOT NULL,
	status TEXT NOT NULL,
	estimated_value INTEGER NOT NULL DEFAULT 0,
	sales_person TEXT,
	lead_source TEXT,
	services TEXT,
	notes TEXT,
	last_contact_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_priority ON leads(priority);
CREATE INDEX IF NOT EXISTS idx_leads_sales_person ON leads(sales_person);
CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads(created_at);

CREATE TABLE IF NOT EXISTS quotations (
	id TEXT PRIMARY KEY,
	quotation_number TEXT NOT NULL UNIQUE,
	lead_id TEXT NOT NULL,
	customer_name TEXT NOT NULL,
	customer_type TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT,
	address TEXT,
	problem_description TEXT,
	sales_person TEXT,
	estimated_value INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	valid_until DATETIME,
	notes TEXT,
	payment_terms TEXT,
	tax_rate REAL NOT NULL DEFAULT 0,
	subtotal INTEGER NOT NULL DEFAULT 0,
	tax_amount INTEGER NOT NULL DEFAULT 0,
	total INTEGER NOT NULL DEFAULT 0,
	parent_quotation_id TEXT,
	version INTEGER NOT NULL DEFAULT 1,
	is_latest_version INTEGER NOT NULL DEFAULT 1,
	revision_reason TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (lead_id) REFERENCES leads(id),
	FOREIGN KEY (parent_quotation_id) REFERENCES quotations(id)
);

CREATE INDEX IF NOT EXISTS idx_quotations_lead_id ON quotations(lead_id);
CREATE INDEX IF NOT EXISTS idx_quotations_status ON quotations(status);
CREATE INDEX IF NOT EXISTS idx_quotations_parent ON quotations(parent_quotation_id);
CREATE INDEX IF NOT EXISTS idx_quotations_latest ON quotations(is_latest_version);

CREATE TABLE IF NOT EXISTS quotation_services (
	quotation_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	quantity INTEGER NOT NULL DEFAULT 1,
	unit_price INTEGER NOT NULL DEFAULT 0,
	total_price INTEGER NOT NULL DEFAULT 0,
	included INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (quotation_id, position),
	FOREIGN KEY (quotation_id) REFERENCES quotations(id)
);

CREATE TABLE IF NOT EXISTS contracts (
	id TEXT PRIMARY KEY,
	contract_number TEXT NOT NULL UNIQUE,
	quotation_id TEXT NOT NULL UNIQUE,
	lead_id TEXT NOT NULL,
	customer_name TEXT NOT NULL,
	customer_type TEXT NOT NULL,
	email TEXT NOT NULL,
	phone TEXT,
	address TEXT,
	sales_person TEXT,
	status TEXT NOT NULL,
	start_date DATETIME NOT NULL,
	end_date DATETIME,
	total_value INTEGER NOT NULL DEFAULT 0,
	payment_terms TEXT,
	notes TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (quotation_id) REFERENCES quotations(id),
	FOREIGN KEY (lead_id) REFERENCES leads(id)
);

CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts(status);
CREATE INDEX IF NOT EXISTS idx_contracts_lead_id ON contracts(lead_id);

CREATE TABLE IF NOT EXISTS contract_services (
	contract_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	description TEXT,
	quantity INTEGER NOT NULL DEFAULT 1,
	unit_price INTEGER NOT NULL DEFAULT 0,
	total_price INTEGER NOT NULL DEFAULT 0,
	included INTEGER NOT NULL DEFAULT 1,
	PRIMARY KEY (contract_id, position),
	FOREIGN KEY (contract_id) REFERENCES contracts(id)
);

CREATE TABLE IF NOT EXISTS lead_activities (
	id TEXT PRIMARY KEY,
	lead_id TEXT NOT NULL,
	activity_type TEXT NOT NULL,
	description TEXT NOT NULL,
	scheduled_date DATETIME,
	agenda TEXT,
	completed_date DATETIME,
	is_completed INTEGER NOT NULL DEFAULT 0,
	user_name TEXT,
	created_at DATETIME NOT NULL,
	FOREIGN KEY (lead_id) REFERENCES leads(id)
);

CREATE INDEX IF NOT EXISTS idx_activities_lead_id ON lead_activities(lead_id);
CREATE INDEX IF NOT EXISTS idx_activities_scheduled ON lead_activities(scheduled_date);

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	role TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS number_sequences (
	scope TEXT PRIMARY KEY,
	next_seq INTEGER NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
