package web

// Dashboard with the latest recommendation, allocation stats and a feed
// of evaluated cycles.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>firecro</title>
  <link rel="preconnect" href="https://fonts.googleapis.com">
  <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
  <link href="https://fonts.googleapis.com/css2?family=Press+Start+2P&family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root {
      --bg:#ffffff;
      --ink:#111111;
      --ink-mid:#4d4d4d;
      --ink-soft:#9c9c9c;
      --panel:#f6f6f6;
      --danger:#d7263d;
      --warning:#ff7f11;
      --success:#1b9aaa;
      --info:#3c91e6;
    }
    * { box-sizing:border-box; }
    body {
      margin:0;
      min-height:100vh;
      display:flex;
      align-items:center;
      justify-content:center;
      padding:2rem;
      background:var(--bg);
      color:var(--ink);
      font-family:'Space Mono','JetBrains Mono',monospace;
    }
    #app {
      width:min(1100px, 96vw);
      background:var(--panel);
      border:3px solid var(--ink);
      padding:2rem;
      position:relative;
      box-shadow:12px 12px 0 rgba(0,0,0,.15);
      display:grid;
      grid-template-columns:1fr 360px;
      gap:2rem;
    }
    header { grid-column:1 / -1; display:flex; justify-content:space-between; align-items:flex-start; gap:1rem; }
    .eyebrow {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.55rem;
      text-transform:uppercase;
      letter-spacing:.2em;
      margin:0;
    }
    .status {
      font-size:.65rem;
      text-transform:uppercase;
      letter-spacing:.1em;
      border:2px solid var(--ink);
      padding:.4rem .9rem;
      background:#fff;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    .card {
      border:3px solid var(--ink);
      padding:1.5rem;
      background:#fff;
      box-shadow:8px 8px 0 rgba(0,0,0,.15);
      margin-bottom:1.5rem;
    }
    .card .label {
      font-size:.62rem;
      text-transform:uppercase;
      letter-spacing:.2em;
      color:var(--ink-mid);
    }
    .card .value {
      margin-top:.8rem;
      font-size:1.4rem;
      font-weight:700;
      letter-spacing:.05em;
    }
    .kind { text-transform:uppercase; letter-spacing:.1em; font-weight:700; }
    .kind.danger { color:var(--danger); }
    .kind.warning { color:var(--warning); }
    .kind.success { color:var(--success); }
    .kind.info { color:var(--info); }
    .rationale { margin-top:.8rem; font-size:.75rem; color:var(--ink-mid); line-height:1.5; }
    .meta { display:flex; flex-wrap:wrap; gap:.5rem; margin-top:1rem; }
    .pill {
      font-size:.55rem;
      letter-spacing:.12em;
      text-transform:uppercase;
      padding:.35rem .7rem;
      border:2px solid var(--ink);
      background:#fefefe;
      box-shadow:4px 4px 0 rgba(0,0,0,.15);
    }
    .feed { max-height:60vh; overflow-y:auto; display:flex; flex-direction:column; gap:1rem; }
    .feed-card {
      border:2px solid var(--ink);
      padding:1rem;
      background:#fff;
      box-shadow:4px 4px 0 rgba(0,0,0,.12);
      font-size:.7rem;
      line-height:1.4;
    }
    .feed-time { font-size:.6rem; color:var(--ink-mid); }
    .sidebar-title {
      font-family:'Press Start 2P','Space Mono',monospace;
      font-size:.6rem;
      text-transform:uppercase;
      letter-spacing:.15em;
      margin-bottom:1rem;
      padding-bottom:.8rem;
      border-bottom:2px solid var(--ink);
    }
    .empty-state {
      border:2px dashed var(--ink-soft);
      padding:2rem;
      text-align:center;
      font-size:.8rem;
      letter-spacing:.12em;
      text-transform:uppercase;
      color:var(--ink-mid);
    }
    @media (max-width:720px) {
      #app { grid-template-columns:1fr; padding:1.2rem; }
    }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <p class="eyebrow">fire cro dashboard</p>
      <div id="sse-status" class="status">Connecting…</div>
    </header>
    <div class="main">
      <div class="card" id="recommendation">
        <div class="label">Recommendation</div>
        <div class="value"><span id="recKind" class="kind info">waiting</span></div>
        <div id="recRationale" class="rationale">No cycle evaluated yet.</div>
        <div class="meta">
          <span class="pill" id="recAmount" hidden></span>
          <span class="pill" id="recSellOrder" hidden></span>
        </div>
      </div>
      <div class="card">
        <div class="label">Allocation</div>
        <div class="meta">
          <span class="pill" id="phase">Phase: —</span>
          <span class="pill" id="stockRatio">Stock: —</span>
          <span class="pill" id="cashRatio">Cash: —</span>
          <span class="pill" id="mode">Mode: —</span>
        </div>
      </div>
      <div class="card">
        <div class="label">Signals</div>
        <div class="meta">
          <span class="pill" id="rsi">RSI: —</span>
          <span class="pill" id="mdd">MDD: —</span>
          <span class="pill" id="zone">Zone: —</span>
        </div>
      </div>
      <div class="card">
        <div class="label">Monthly contribution</div>
        <div id="contribution" class="rationale">—</div>
      </div>
    </div>
    <aside>
      <h3 class="sidebar-title">Cycle history</h3>
      <div id="feed" class="feed">
        <div id="emptyState" class="empty-state">Waiting for cycles…</div>
      </div>
    </aside>
  </div>
<script>
const statusEl = document.getElementById('sse-status');
const feed = document.getElementById('feed');
const emptyState = document.getElementById('emptyState');
const MAX_FEED = 50;

const pct = (v) => (parseFloat(v) * 100).toFixed(1) + '%';

function severityClass(sev){
  switch(sev){
    case 'danger': return 'danger';
    case 'warning': return 'warning';
    case 'success': return 'success';
    default: return 'info';
  }
}

function renderLatest(cycle){
  const rec = cycle.assessment;
  const kindEl = document.getElementById('recKind');
  kindEl.textContent = rec.kind.replace(/_/g, ' ');
  kindEl.className = 'kind ' + severityClass(rec.severity);
  document.getElementById('recRationale').textContent = rec.rationale;

  const amountEl = document.getElementById('recAmount');
  if(rec.has_amount){
    amountEl.hidden = false;
    amountEl.textContent = 'Amount: ' + parseFloat(rec.amount).toLocaleString();
  } else {
    amountEl.hidden = true;
  }

  const sellEl = document.getElementById('recSellOrder');
  if(rec.sell_order && rec.sell_order.length){
    sellEl.hidden = false;
    sellEl.textContent = 'Sell: ' + rec.sell_order.join(' > ');
  } else {
    sellEl.hidden = true;
  }

  document.getElementById('phase').textContent = 'Phase: ' + cycle.phase_name;
  document.getElementById('stockRatio').textContent = 'Stock: ' + pct(cycle.portfolio.stock_ratio);
  document.getElementById('cashRatio').textContent = 'Cash: ' + pct(cycle.portfolio.cash_ratio);
  document.getElementById('mode').textContent = 'Mode: ' + cycle.targets.mode;

  const bundle = cycle.market.benchmark.bundle;
  document.getElementById('rsi').textContent = 'RSI: ' + (bundle.rsi_known ? parseFloat(bundle.rsi).toFixed(1) : 'n/a');
  document.getElementById('mdd').textContent = 'MDD: ' + pct(bundle.drawdown);
  document.getElementById('zone').textContent = 'Zone: ' + cycle.rsi_zone;

  document.getElementById('contribution').textContent = cycle.contribution.rationale;
}

function appendFeedCard(cycle){
  if(emptyState && emptyState.parentNode){ emptyState.remove(); }
  const card = document.createElement('div');
  card.className = 'feed-card';

  const kind = document.createElement('div');
  kind.className = 'kind ' + severityClass(cycle.assessment.severity);
  kind.textContent = cycle.assessment.kind.replace(/_/g, ' ');

  const time = document.createElement('div');
  time.className = 'feed-time';
  time.textContent = new Date(cycle.evaluated_at).toLocaleString();

  card.append(kind, time);
  feed.insertBefore(card, feed.firstChild);
  while(feed.children.length > MAX_FEED){
    feed.removeChild(feed.lastChild);
  }
}

function connectSSE(){
  const source = new EventSource('/cycles/stream');
  statusEl.textContent = 'Status: live';
  source.addEventListener('cycle', (event) => {
    try{
      const cycle = JSON.parse(event.data);
      renderLatest(cycle);
      appendFeedCard(cycle);
    }catch(err){
      console.error('cycle parse', err);
    }
  });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

connectSSE();
</script>
</body>
</html>`
