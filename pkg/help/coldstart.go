package help

const ColdstartYAML = `# pageview-charts Quick Start

setup:
  user_agent: |
    # The pageviews API asks every client for a contact identity.
    export PAGEVIEWS_USER_AGENT="you@example.org"
  titles_file: |
    # CSV with a header row; the "name" column holds article titles.
    name,url
    Stegosaurus,https://en.wikipedia.org/wiki/Stegosaurus

access_types:
  desktop: "desktop views only"
  mobile: "mobile-web + mobile-app, summed per month"
  cumulative: "all-access views, running total over time"

commands:
  collect_all: |
    pageview-charts collect --titles dinosaurs.csv --prefix dino

  collect_some: |
    pageview-charts collect --titles dinosaurs.csv --access desktop --access mobile

  collect_cached: |
    pageview-charts collect --titles dinosaurs.csv --cache-ttl 24h

  analyze: |
    pageview-charts analyze --prefix dino --charts-dir charts

  analyze_svg: |
    pageview-charts analyze --prefix dino --format svg

  list_runs: |
    pageview-charts runs

  run_details: |
    pageview-charts run          # latest
    pageview-charts run 3        # by id
    pageview-charts run 9f1c     # by key prefix

output_files:
  - "{prefix}_monthly_{desktop|mobile|cumulative}_{YYYYMM}-{YYYYMM}.json (one series per title)"
  - "collect-summary.json (per-file counts and every failed request)"
  - "charts/selections.yaml (which articles each chart shows and why)"

exit_codes:
  0: "success"
  1: "interrupted, a chart was skipped, or --strict with missing titles"
  2: "bad configuration or unreadable input"

config:
  file: "--config pageview-charts.yaml (YAML, same keys as below)"
  env: "PAGEVIEWS_USER_AGENT, PAGEVIEWS_START, PAGEVIEWS_END, PAGEVIEWS_DB, PAGEVIEWS_TITLES, PAGEVIEWS_OUTPUT_DIR, PAGEVIEWS_RPS (.env is read too)"
  example: |
    titles_file: dinosaurs.csv
    start: "2015070100"
    end: "2022100100"
    file_prefix: dino
    api:
      requests_per_second: 50
    cache:
      ttl: 24h
    charts:
      top_n: 10
`
