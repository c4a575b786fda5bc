package help

const QuickstartYAML = `# schoolbot Quick Start

setup:
  config: |
    # schoolbot.yaml (every key is optional)
    school:
      name: "DAV Koyla Nagar"
      seedUrl: "http://davkoylanagar.com/"
      keywords: [dav, koyla, nagar]
    llm:
      model: gemini-2.0-flash     # GEMINI_API_KEY enables model answers
    refresh:
      enabled: true
      interval: 2h
    cache:
      backend: file               # none, file, redis

commands:
  first_crawl: |
    schoolbot --config schoolbot.yaml crawl

  ask_once: |
    schoolbot ask "What are the school timings?"
    schoolbot ask --show-sources "How do I apply for admission?"

  interactive: |
    schoolbot chat                # auto-refresh runs in the background

  headless: |
    schoolbot serve               # refresh scheduler + /metrics

  knowledge_base: |
    schoolbot docs add --title "Fee Structure" --content "Tuition is ..." --category fees
    schoolbot docs import notes.md brochure.txt
    schoolbot docs export kb.yaml
    schoolbot docs list --origin manual

  calendar: |
    schoolbot events seed --year 2025
    schoolbot events add --title "Annual Day" --date 2025-12-12 --category celebration
    schoolbot events holidays --month 12

  leads: |
    schoolbot leads add --name "Asha" --contact "98xxxxxx10" --query "admission for class 5"
    schoolbot leads list --status new
    schoolbot leads status 3 contacted --by office

  overview: |
    schoolbot stats

environment:
  GEMINI_API_KEY: "Hosted model key; without it answers use templates"
  WEBSITE_URL: "Overrides school.seedUrl"
  SCHOOLBOT_CONFIG: "Path to the YAML config"
  SCHOOLBOT_DB_PATH: "SQLite database path"
  SCHOOLBOT_CACHE_BACKEND: "none, file or redis"
  SCHOOLBOT_METRICS_ADDR: "Enables /metrics on this address"

intents:
  holiday: "holiday, vacation, festival, off (+ month name) -> calendar"
  school: "school keywords, or ambiguous words with a matching document"
  generic: "everything else -> model or capability overview"
`
