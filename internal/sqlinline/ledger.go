package sqlinline

// QReserveCredits debits an organization and appends the ledger entry in one
// statement. The conditional update is the serialization point: two racing
// reservations cannot both pass a stale balance check. Returns zero rows when
// the balance cannot cover the units.
const QReserveCredits = `--sql 074ce548-5713-4fae-8441-12c755e57c76
with debit as (
    update organizations
    set credit_balance = credit_balance - $2::bigint, updated_at = now()
    where id = $1::uuid and credit_balance >= $2::bigint
    returning credit_balance + $2::bigint as balance_before, credit_balance as balance_after
),
entry as (
    insert into credit_ledger (id, organization_id, action_type, units_used, balance_before, balance_after, description, metadata)
    select gen_random_uuid(), $1::uuid, 'VIDEO_GENERATION', $2::bigint, debit.balance_before, debit.balance_after, $3::text,
           jsonb_build_object('job_id', $4::text)
    from debit
    returning id
)
select debit.balance_before, debit.balance_after
from debit;
`

// QRefundCredits credits units back and appends the refund entry, guarded so
// at most one refund per job id ever exists. A duplicate call matches no rows.
const QRefundCredits = `--sql 241e9443-f552-4378-9986-ef99bbfa5a40
with credit as (
    update organizations
    set credit_balance = credit_balance + $2::bigint, updated_at = now()
    where id = $1::uuid
      and not exists (
        select 1 from credit_ledger
        where action_type = 'VIDEO_GENERATION_REFUND' and metadata->>'job_id' = $4::text
      )
    returning credit_balance - $2::bigint as balance_before, credit_balance as balance_after
),
entry as (
    insert into credit_ledger (id, organization_id, action_type, units_used, balance_before, balance_after, description, metadata)
    select gen_random_uuid(), $1::uuid, 'VIDEO_GENERATION_REFUND', -$2::bigint, credit.balance_before, credit.balance_after, $3::text,
           jsonb_build_object('job_id', $4::text, 'reason', $5::text)
    from credit
    returning id
)
select credit.balance_before, credit.balance_after
from credit;
`

const QSelectCreditBalance = `--sql d2eecab4-1c61-43b5-a480-423977c09373
select credit_balance
from organizations
where id = $1::uuid;
`

const QGrantCredits = `--sql edf3d85b-5082-4bd6-a2ca-bb8ac5ebdfec
with credit as (
    update organizations
    set credit_balance = credit_balance + $2::bigint, updated_at = now()
    where id = $1::uuid
    returning credit_balance - $2::bigint as balance_before, credit_balance as balance_after
),
entry as (
    insert into credit_ledger (id, organization_id, action_type, units_used, balance_before, balance_after, description, metadata)
    select gen_random_uuid(), $1::uuid, 'CREDIT_GRANT', -$2::bigint, credit.balance_before, credit.balance_after, $3::text, '{}'::jsonb
    from credit
    returning id
)
select credit.balance_before, credit.balance_after
from credit;
`
