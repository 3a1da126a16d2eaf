package store

type migration struct {
	version string
	sql     string
}

// migrations is the ordered schema history. Conflict keys match the
// upsert semantics each repository relies on.
var migrations = []migration{
	{
		version: "001_create_teams",
		sql: `
			CREATE TABLE IF NOT EXISTS teams (
				id INTEGER PRIMARY KEY,
				conference VARCHAR(10) NOT NULL DEFAULT '',
				division VARCHAR(20) NOT NULL DEFAULT '',
				city VARCHAR(50) NOT NULL DEFAULT '',
				name VARCHAR(50) NOT NULL DEFAULT '',
				full_name VARCHAR(100) NOT NULL DEFAULT '',
				abbreviation VARCHAR(10) NOT NULL DEFAULT '',
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_teams_abbreviation ON teams(abbreviation);
		`,
	},
	{
		version: "002_create_players",
		sql: `
			CREATE TABLE IF NOT EXISTS players (
				id INTEGER PRIMARY KEY,
				first_name VARCHAR(100) NOT NULL DEFAULT '',
				last_name VARCHAR(100) NOT NULL DEFAULT '',
				team_id INTEGER REFERENCES teams(id),
				position VARCHAR(10),
				jersey_number VARCHAR(10),
				height VARCHAR(10),
				weight VARCHAR(10),
				country VARCHAR(100),
				draft_year INTEGER,
				draft_round INTEGER,
				draft_number INTEGER,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_players_team ON players(team_id);
			CREATE INDEX IF NOT EXISTS idx_players_name ON players(last_name, first_name);
		`,
	},
	{
		version: "003_create_player_season_stats",
		sql: `
			CREATE TABLE IF NOT EXISTS player_season_stats (
				player_id INTEGER NOT NULL,
				season INTEGER NOT NULL,
				team_id INTEGER NOT NULL DEFAULT 0,
				games_played INTEGER NOT NULL DEFAULT 0,
				min DOUBLE PRECISION, pts DOUBLE PRECISION, reb DOUBLE PRECISION,
				ast DOUBLE PRECISION, stl DOUBLE PRECISION, blk DOUBLE PRECISION,
				turnover DOUBLE PRECISION, pf DOUBLE PRECISION,
				fgm DOUBLE PRECISION, fga DOUBLE PRECISION, fg_pct DOUBLE PRECISION,
				fg3m DOUBLE PRECISION, fg3a DOUBLE PRECISION, fg3_pct DOUBLE PRECISION,
				ftm DOUBLE PRECISION, fta DOUBLE PRECISION, ft_pct DOUBLE PRECISION,
				oreb DOUBLE PRECISION, dreb DOUBLE PRECISION,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (player_id, season, team_id)
			);
			CREATE INDEX IF NOT EXISTS idx_pss_season ON player_season_stats(season);
		`,
	},
	{
		version: "004_create_team_season_stats",
		sql: `
			CREATE TABLE IF NOT EXISTS team_season_stats (
				team_id INTEGER NOT NULL,
				season INTEGER NOT NULL,
				games_played INTEGER NOT NULL DEFAULT 0,
				min DOUBLE PRECISION, pts DOUBLE PRECISION, reb DOUBLE PRECISION,
				ast DOUBLE PRECISION, stl DOUBLE PRECISION, blk DOUBLE PRECISION,
				turnover DOUBLE PRECISION, pf DOUBLE PRECISION,
				fgm DOUBLE PRECISION, fga DOUBLE PRECISION, fg_pct DOUBLE PRECISION,
				fg3m DOUBLE PRECISION, fg3a DOUBLE PRECISION, fg3_pct DOUBLE PRECISION,
				ftm DOUBLE PRECISION, fta DOUBLE PRECISION, ft_pct DOUBLE PRECISION,
				oreb DOUBLE PRECISION, dreb DOUBLE PRECISION,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (team_id, season)
			);
		`,
	},
	{
		version: "005_create_player_game_log",
		sql: `
			CREATE TABLE IF NOT EXISTS player_game_log (
				player_id INTEGER NOT NULL,
				game_id INTEGER NOT NULL,
				game_date VARCHAR(30) NOT NULL DEFAULT '',
				season INTEGER NOT NULL,
				team_id INTEGER NOT NULL,
				opponent_id INTEGER,
				is_home BOOLEAN,
				result VARCHAR(1),
				final_score VARCHAR(20),
				dnp BOOLEAN NOT NULL DEFAULT FALSE,
				started BOOLEAN,
				min VARCHAR(10),
				pts DOUBLE PRECISION, reb DOUBLE PRECISION, ast DOUBLE PRECISION,
				stl DOUBLE PRECISION, blk DOUBLE PRECISION, turnover DOUBLE PRECISION,
				pf DOUBLE PRECISION,
				fgm DOUBLE PRECISION, fga DOUBLE PRECISION,
				fg3m DOUBLE PRECISION, fg3a DOUBLE PRECISION,
				ftm DOUBLE PRECISION, fta DOUBLE PRECISION,
				oreb DOUBLE PRECISION, dreb DOUBLE PRECISION,
				plus_minus INTEGER,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (player_id, game_id)
			);
			CREATE INDEX IF NOT EXISTS idx_pgl_player_season ON player_game_log(player_id, season);
		`,
	},
	{
		version: "006_create_lineups",
		sql: `
			CREATE TABLE IF NOT EXISTS lineups (
				game_id INTEGER PRIMARY KEY,
				starters INTEGER[] NOT NULL DEFAULT '{}',
				data JSONB NOT NULL DEFAULT '[]',
				cached_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		version: "007_create_player_injuries",
		sql: `
			CREATE TABLE IF NOT EXISTS player_injuries (
				player_id INTEGER PRIMARY KEY,
				status VARCHAR(50) NOT NULL DEFAULT '',
				return_date VARCHAR(50),
				description TEXT,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
}
